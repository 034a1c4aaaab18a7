package core

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// maxTokens is offset, opcode and up to two parameters.
const maxTokens = 4

var fieldSeparator = regexp.MustCompile(`[:,\s]+`)

// Instruction is one parsed line of a program. It is never modified after
// parsing.
type Instruction struct {
	Offset int     // Logical address used by jump targets
	Opcode string  // Raw opcode token, e.g. "iconst_2" or "if_icmpeq"
	Params []int32 // Zero to two positional parameters

	op      Opcode
	operand int32
}

// ParseError reports a line that does not follow the instruction format.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseInstruction parses a line such as "21 : bipush 6" or "40:iinc 4, 1".
func ParseInstruction(line string) (Instruction, error) {
	var inst Instruction

	trimmed := strings.TrimSpace(line)
	count := 0
	for _, token := range fieldSeparator.Split(trimmed, -1) {
		item := strings.TrimSpace(token)
		if item == "" {
			slog.Debug("blank item", "line", line)
			continue
		}

		count++
		switch {
		case count == 1:
			offset, err := strconv.Atoi(item)
			if err != nil {
				return Instruction{}, &ParseError{Line: line, Reason: "invalid offset", Err: err}
			}
			inst.Offset = offset
		case count == 2:
			inst.Opcode = item
		case count <= maxTokens:
			param, err := strconv.ParseInt(item, 10, 32)
			if err != nil {
				return Instruction{}, &ParseError{Line: line, Reason: "invalid parameter", Err: err}
			}
			inst.Params = append(inst.Params, int32(param))
		default:
			return Instruction{}, &ParseError{Line: line, Reason: "illegal format: " + item}
		}
	}

	if count < 2 {
		return Instruction{}, &ParseError{Line: line, Reason: "missing opcode"}
	}

	inst.op, inst.operand = decodeOpcode(inst.Opcode)

	return inst, nil
}

// NewInstruction builds an instruction from already separated fields.
func NewInstruction(offset int, opcode string, params ...int32) Instruction {
	inst := Instruction{
		Offset: offset,
		Opcode: opcode,
		Params: append([]int32(nil), params...),
	}
	inst.op, inst.operand = decodeOpcode(opcode)

	return inst
}

// NumParams returns the number of parameters the instruction carries.
func (i Instruction) NumParams() int {
	return len(i.Params)
}

// Param1 returns the first parameter.
func (i Instruction) Param1() (int32, error) {
	if len(i.Params) < 1 {
		return 0, fmt.Errorf("%w: %s takes zero parameters", ErrParamArity, i.Opcode)
	}
	return i.Params[0], nil
}

// Param2 returns the second parameter.
func (i Instruction) Param2() (int32, error) {
	if len(i.Params) < 2 {
		return 0, fmt.Errorf("%w: %s takes zero or one parameters", ErrParamArity, i.Opcode)
	}
	return i.Params[1], nil
}

// Op returns the decoded opcode.
func (i Instruction) Op() Opcode {
	return i.op
}

// EmbeddedOperand returns the small integer carried in the opcode token
// ("iload_3" carries 3), or -1 when there is none.
func (i Instruction) EmbeddedOperand() int32 {
	return i.operand
}

func (i Instruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d: %s ", i.Offset, i.Opcode)
	for _, p := range i.Params {
		fmt.Fprintf(&sb, "%d ", p)
	}
	return sb.String()
}
