package core

import (
	"errors"
	"fmt"
)

var (
	ErrParamArity        = errors.New("instruction takes fewer parameters")
	ErrStackUnderflow    = errors.New("operand stack underflow")
	ErrDivideByZero      = errors.New("division by zero")
	ErrUndefinedVariable = errors.New("variable read before store")
	ErrNoVariableIndex   = errors.New("no variable index")
	ErrUnknownOffset     = errors.New("jump target offset not found")
)

// RuntimeError is a fault raised while executing the instruction at Offset.
// It always aborts the run.
type RuntimeError struct {
	Offset int
	Opcode string
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("offset %d (%s): %v", e.Offset, e.Opcode, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
