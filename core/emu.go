package core

import (
	"fmt"
	"io"
)

// OutputSink receives the values popped by print instructions.
type OutputSink interface {
	Emit(value int32) error
}

// WriterSink writes each printed value on its own line.
type WriterSink struct {
	W io.Writer
}

// Emit writes the decimal value followed by a newline.
func (s WriterSink) Emit(value int32) error {
	_, err := fmt.Fprintln(s.W, value)
	return err
}

type instEmulator struct {
	out OutputSink
}

// Step executes the instruction under the cursor and moves the cursor to the
// next instruction, or to the jump target when a branch is taken.
func (e instEmulator) Step(prog Program, state *State) error {
	if state.Halted {
		return nil
	}
	if state.PC < 0 || state.PC >= prog.Len() {
		state.Halted = true
		return nil
	}

	inst := prog.Insts[state.PC]
	Trace("Inst",
		"Offset", inst.Offset,
		"Opcode", inst.Opcode,
		"Params", inst.Params,
		"StackDepth", state.StackDepth(),
	)

	target, jump, err := e.RunInst(inst, state)
	state.Steps++
	if err != nil {
		state.Halted = true
		return &RuntimeError{Offset: inst.Offset, Opcode: inst.Opcode, Err: err}
	}

	if !jump {
		state.PC++
	} else {
		pos, found := prog.Lookup(target)
		if !found {
			state.Halted = true
			return &RuntimeError{
				Offset: inst.Offset,
				Opcode: inst.Opcode,
				Err:    fmt.Errorf("%w: %d", ErrUnknownOffset, target),
			}
		}
		state.PC = pos
	}

	if state.PC >= prog.Len() {
		state.Halted = true
	}

	return nil
}

// RunInst executes one instruction against state. It returns the target
// offset and true when control must transfer.
func (e instEmulator) RunInst(inst Instruction, state *State) (int, bool, error) {
	switch op := inst.Op(); op {
	case OpIconst:
		state.push(max(inst.EmbeddedOperand(), 0))
	case OpBipush:
		v, err := inst.Param1()
		if err != nil {
			return 0, false, err
		}
		state.push(v)
	case OpIadd, OpIsub, OpImul, OpIdiv, OpIrem:
		return 0, false, e.runArith(op, state)
	case OpPrint:
		v, err := state.pop()
		if err != nil {
			return 0, false, err
		}
		if e.out != nil {
			if err := e.out.Emit(v); err != nil {
				return 0, false, fmt.Errorf("print: %w", err)
			}
		}
	case OpReturn:
		// Does not halt; execution continues with the next instruction.
	case OpIload:
		return 0, false, e.runIload(inst, state)
	case OpIstore:
		return 0, false, e.runIstore(inst, state)
	case OpGoto:
		target, err := inst.Param1()
		if err != nil {
			return 0, false, err
		}
		return int(target), true, nil
	case OpIinc:
		return 0, false, e.runIinc(inst, state)
	case OpIfIcmpeq, OpIfIcmpne, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple, OpIfIcmplt:
		return e.runIfIcmp(op, inst, state)
	case OpIfne:
		return e.runIfne(inst, state)
	case OpUnknown:
		Trace("SkipUnknown", "Offset", inst.Offset, "Opcode", inst.Opcode)
	}

	return 0, false, nil
}

// runArith pops a then b and pushes b OP a.
func (e instEmulator) runArith(op Opcode, state *State) error {
	a, err := state.pop()
	if err != nil {
		return err
	}
	b, err := state.pop()
	if err != nil {
		return err
	}

	var result int32
	switch op {
	case OpIadd:
		result = b + a
	case OpIsub:
		result = b - a
	case OpImul:
		result = b * a
	case OpIdiv:
		if a == 0 {
			return ErrDivideByZero
		}
		result = b / a
	case OpIrem:
		if a == 0 {
			return ErrDivideByZero
		}
		result = b % a
	}

	state.push(result)
	return nil
}

// variableIndex prefers the embedded operand ("iload_2") and falls back to a
// single explicit parameter ("iload 2").
func (e instEmulator) variableIndex(inst Instruction) (int32, error) {
	if idx := inst.EmbeddedOperand(); idx != NoOperand {
		return idx, nil
	}
	if inst.NumParams() == 1 {
		return inst.Params[0], nil
	}
	return 0, fmt.Errorf("%w for %s", ErrNoVariableIndex, inst.Opcode)
}

func (e instEmulator) runIload(inst Instruction, state *State) error {
	idx, err := e.variableIndex(inst)
	if err != nil {
		return err
	}

	v, err := state.load(idx)
	if err != nil {
		return fmt.Errorf("%w: %d", err, idx)
	}

	state.push(v)
	return nil
}

func (e instEmulator) runIstore(inst Instruction, state *State) error {
	v, err := state.pop()
	if err != nil {
		return err
	}

	idx, err := e.variableIndex(inst)
	if err != nil {
		return err
	}

	state.store(idx, v)
	return nil
}

func (e instEmulator) runIinc(inst Instruction, state *State) error {
	idx, err := inst.Param1()
	if err != nil {
		return err
	}
	delta, err := inst.Param2()
	if err != nil {
		return err
	}

	v, err := state.load(idx)
	if err != nil {
		return fmt.Errorf("%w: %d", err, idx)
	}

	state.store(idx, v+delta)
	return nil
}

// runIfIcmp pops x then y. The relation is written against the first popped
// value, so if_icmplt branches when x > y, i.e. when y < x.
func (e instEmulator) runIfIcmp(op Opcode, inst Instruction, state *State) (int, bool, error) {
	x, err := state.pop()
	if err != nil {
		return 0, false, err
	}
	y, err := state.pop()
	if err != nil {
		return 0, false, err
	}

	var taken bool
	switch op {
	case OpIfIcmpeq:
		taken = x == y
	case OpIfIcmpne:
		taken = x != y
	case OpIfIcmpge:
		taken = x <= y
	case OpIfIcmpgt:
		taken = x < y
	case OpIfIcmple:
		taken = x >= y
	case OpIfIcmplt:
		taken = x > y
	}

	return e.branch(inst, taken)
}

func (e instEmulator) runIfne(inst Instruction, state *State) (int, bool, error) {
	v, err := state.pop()
	if err != nil {
		return 0, false, err
	}

	return e.branch(inst, v != 0)
}

func (e instEmulator) branch(inst Instruction, taken bool) (int, bool, error) {
	if !taken {
		return 0, false, nil
	}

	target, err := inst.Param1()
	if err != nil {
		return 0, false, err
	}

	return int(target), true, nil
}
