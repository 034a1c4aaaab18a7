package core

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
)

// Core runs a program on an akita engine, one instruction per cycle.
type Core struct {
	*sim.TickingComponent

	prog  Program
	state *State
	emu   instEmulator
	err   error
}

// MapProgram sets the program that the core needs to run and schedules the
// first tick. Any previous run state is discarded.
func (c *Core) MapProgram(prog Program) {
	c.prog = prog
	c.state = NewState()
	c.err = nil

	if prog.Len() == 0 {
		c.state.Halted = true
		return
	}

	c.TickNow()
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.state == nil || c.state.Halted {
		return false
	}

	pc := c.state.PC
	if err := c.emu.Step(c.prog, c.state); err != nil {
		c.err = err
		slog.Error("CoreFault",
			"Core", c.Name(),
			"Time", float64(c.Engine.CurrentTime()*1e9),
			"Error", err,
		)
		LogState(c.state)
		return false
	}

	Trace("CoreTick",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"From", pc,
		"To", c.state.PC,
	)

	if c.state.Halted {
		LogState(c.state)
		return false
	}

	return true
}

// Halted reports whether the core has no instruction left to run.
func (c *Core) Halted() bool {
	return c.state == nil || c.state.Halted
}

// Err returns the fault that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Steps returns the number of executed instructions.
func (c *Core) Steps() uint64 {
	if c.state == nil {
		return 0
	}
	return c.state.Steps
}

// State exposes the core's machine state.
func (c *Core) State() *State {
	return c.state
}
