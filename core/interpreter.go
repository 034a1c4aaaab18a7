package core

import (
	"io"
	"os"
)

// StepHook is called after each executed instruction.
type StepHook func(inst Instruction, state *State)

// Interpreter evaluates a program to completion in a single call.
type Interpreter struct {
	out  OutputSink
	hook StepHook

	state *State
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithOutput sends printed values to w.
func WithOutput(w io.Writer) InterpreterOption {
	return func(i *Interpreter) {
		i.out = WriterSink{W: w}
	}
}

// WithSink sends printed values to sink.
func WithSink(sink OutputSink) InterpreterOption {
	return func(i *Interpreter) {
		i.out = sink
	}
}

// WithStepHook installs a hook that observes every executed instruction.
func WithStepHook(hook StepHook) InterpreterOption {
	return func(i *Interpreter) {
		i.hook = hook
	}
}

// NewInterpreter creates an interpreter that prints to stdout by default.
func NewInterpreter(opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		out: WriterSink{W: os.Stdout},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes prog from its first instruction until the cursor passes the
// end of the sequence or an instruction fails. Every call starts from a fresh
// operand stack and variable store. A program that loops forever never
// returns.
func (i *Interpreter) Run(prog Program) error {
	i.state = NewState()
	emu := instEmulator{out: i.out}

	if prog.Len() == 0 {
		i.state.Halted = true
		return nil
	}

	for !i.state.Halted {
		inst := prog.Insts[i.state.PC]
		if err := emu.Step(prog, i.state); err != nil {
			LogState(i.state)
			return err
		}
		if i.hook != nil {
			i.hook(inst, i.state)
		}
	}

	LogState(i.state)
	return nil
}

// State returns the state left by the last Run, or nil before the first.
func (i *Interpreter) State() *State {
	return i.state
}
