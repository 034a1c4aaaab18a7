// Package api defines the driver API that runs interpreter cores on a
// simulation engine.
package api

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/jvmint/core"
)

// Driver provides the interface to run programs in timed mode.
type Driver interface {
	// MapProgram creates a core named after the program, loads the program
	// and returns the core. Printed values go to out.
	MapProgram(name string, program core.Program, out io.Writer) *core.Core

	// Cores returns the cores in mapping order.
	Cores() []*core.Core

	// Run runs the engine until every core has halted. It returns the first
	// core fault in mapping order.
	Run() error
}

type coreBuilder interface {
	build(name string, out io.Writer) *core.Core
}

type defaultCoreBuilder struct {
	engine sim.Engine
	freq   sim.Freq
}

func (b defaultCoreBuilder) build(name string, out io.Writer) *core.Core {
	return core.NewBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithOutput(out).
		Build(name)
}

type driverImpl struct {
	name    string
	engine  sim.Engine
	builder coreBuilder

	cores []*core.Core
}

// MapProgram dispatches a program to a new core.
func (d *driverImpl) MapProgram(
	name string,
	program core.Program,
	out io.Writer,
) *core.Core {
	c := d.builder.build(fmt.Sprintf("%s.%s", d.name, name), out)
	c.MapProgram(program)
	d.cores = append(d.cores, c)

	return c
}

func (d *driverImpl) Cores() []*core.Core {
	return d.cores
}

// Run runs all the cores mapped to the driver.
func (d *driverImpl) Run() error {
	if err := d.engine.Run(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	for _, c := range d.cores {
		slog.Debug("CoreFinished",
			"Core", c.Name(),
			"Steps", c.Steps(),
			"Halted", c.Halted(),
		)
		if err := c.Err(); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
	}

	return nil
}
