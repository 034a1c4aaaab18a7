// Package config provides the run configuration of the interpreter.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sarchlab/jvmint/core"
	"gopkg.in/yaml.v3"
)

const (
	ModeDirect = "direct" // Run to completion in one call
	ModeTimed  = "timed"  // One instruction per cycle on an akita engine

	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the settings that affect how a program is run and observed.
type Config struct {
	LogLevel  string  `yaml:"log_level" toml:"log_level"`
	LogFormat string  `yaml:"log_format" toml:"log_format"`
	LogFile   string  `yaml:"log_file" toml:"log_file"`
	DumpState bool    `yaml:"dump_state" toml:"dump_state"`
	Lint      bool    `yaml:"lint" toml:"lint"`
	Mode      string  `yaml:"mode" toml:"mode"`
	FreqGHz   float64 `yaml:"freq_ghz" toml:"freq_ghz"`
}

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config: " + strings.Join(e.Issues, "; ")
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: FormatText,
		Mode:      ModeDirect,
		FreqGHz:   1,
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file. Unset fields keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.NewDecoder(f).Decode(&cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("config: parse %s: unknown key %s", path, undecoded[0])
		}
	default:
		return cfg, fmt.Errorf("config: unsupported file type %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs ValidationError

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if c.LogFormat != FormatText && c.LogFormat != FormatJSON {
		errs.Issues = append(errs.Issues,
			fmt.Sprintf("log_format must be %q or %q", FormatText, FormatJSON))
	}
	if c.Mode != ModeDirect && c.Mode != ModeTimed {
		errs.Issues = append(errs.Issues,
			fmt.Sprintf("mode must be %q or %q", ModeDirect, ModeTimed))
	}
	if c.FreqGHz <= 0 {
		errs.Issues = append(errs.Issues, "freq_ghz must be positive")
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SlogLevel returns the configured level, falling back to Warn.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLevel accepts "trace" in addition to the slog level names.
func ParseLevel(name string) (slog.Level, error) {
	if strings.EqualFold(name, "trace") {
		return core.LevelTrace, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level %q is not a level", name)
	}
	return level, nil
}

// NewLogger builds the logger described by the configuration. The returned
// closer releases the log file, if one was opened.
func (c Config) NewLogger(fallback io.Writer) (*slog.Logger, io.Closer, error) {
	var out io.Writer = fallback
	var closer io.Closer = nopCloser{}

	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("config: open log file: %w", err)
		}
		out = f
		closer = f
	}

	opts := &slog.HandlerOptions{Level: c.SlogLevel()}

	var handler slog.Handler
	if c.LogFormat == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
