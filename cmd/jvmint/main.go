// Command jvmint runs a program written in the textual instruction format and
// prints the values produced by its print instructions.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/jvmint/api"
	"github.com/sarchlab/jvmint/config"
	"github.com/sarchlab/jvmint/core"
	"github.com/sarchlab/jvmint/verify"
	"github.com/tebeka/atexit"
)

const configEnv = "JVMINT_CONFIG"

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stdout, "Usage: jvmint [filename]")
		return 0
	}

	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	cfg := config.Default()
	if path := os.Getenv(configEnv); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			red.Fprintln(stderr, err)
			return 1
		}
		cfg = loaded
	}

	logger, closer, err := cfg.NewLogger(stderr)
	if err != nil {
		red.Fprintln(stderr, err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(logger)

	prog, err := loadProgram(args[0])
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) {
			red.Fprintln(stderr, err)
			return 1
		}

		// Unreadable input is reported but is not a failing exit.
		fmt.Fprintln(stdout, err.Error())
		stderr.Write(debug.Stack())
		return 0
	}

	if cfg.Lint {
		report := verify.GenerateReport(filepath.Base(args[0]), prog)
		if !report.OK() {
			var sb strings.Builder
			report.WriteReport(&sb)
			yellow.Fprint(stderr, sb.String())
		}
	}

	state, err := execute(cfg, prog, stdout)
	if cfg.DumpState && state != nil {
		core.PrintState(stderr, state)
	}
	if err != nil {
		red.Fprintln(stderr, err)
		return 1
	}

	return 0
}

func loadProgram(path string) (core.Program, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return core.LoadProgramFileFromYAML(path)
	default:
		return core.LoadProgramFile(path)
	}
}

func execute(cfg config.Config, prog core.Program, stdout io.Writer) (*core.State, error) {
	if cfg.Mode == config.ModeTimed {
		driver := api.DriverBuilder{}.
			WithEngine(sim.NewSerialEngine()).
			WithFreq(sim.Freq(cfg.FreqGHz * float64(sim.GHz))).
			Build("Driver")
		c := driver.MapProgram("Core", prog, stdout)
		err := driver.Run()
		return c.State(), err
	}

	interp := core.NewInterpreter(core.WithOutput(stdout))
	err := interp.Run(prog)
	return interp.State(), err
}
