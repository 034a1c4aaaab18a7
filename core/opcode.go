package core

import (
	"strconv"
	"strings"
)

// Opcode is the decoded operation of an instruction.
type Opcode int

const (
	OpUnknown Opcode = iota

	// Stack-phase operations work only on the operand stack.
	OpIconst
	OpBipush
	OpIadd
	OpIsub
	OpImul
	OpIdiv
	OpIrem
	OpPrint
	OpReturn

	// Variable-phase operations use the variable store or transfer control.
	OpIload
	OpIstore
	OpGoto
	OpIinc
	OpIfIcmpeq
	OpIfIcmpne
	OpIfIcmpge
	OpIfIcmpgt
	OpIfIcmple
	OpIfIcmplt
	OpIfne
)

const (
	minEmbeddedOperand = 0
	maxEmbeddedOperand = 5

	// NoOperand marks an absent or invalid embedded operand.
	NoOperand int32 = -1
)

var stackOpcodes = map[string]Opcode{
	"iconst": OpIconst,
	"bipush": OpBipush,
	"iadd":   OpIadd,
	"isub":   OpIsub,
	"imul":   OpImul,
	"idiv":   OpIdiv,
	"irem":   OpIrem,
	"print":  OpPrint,
	"return": OpReturn,
}

var variableOpcodes = map[string]Opcode{
	"iload":     OpIload,
	"istore":    OpIstore,
	"goto":      OpGoto,
	"iinc":      OpIinc,
	"if_icmpeq": OpIfIcmpeq,
	"if_icmpne": OpIfIcmpne,
	"if_icmpge": OpIfIcmpge,
	"if_icmpgt": OpIfIcmpgt,
	"if_icmple": OpIfIcmple,
	"if_icmplt": OpIfIcmplt,
	"ifne":      OpIfne,
}

var opcodeNames = map[Opcode]string{
	OpUnknown:  "unknown",
	OpIconst:   "iconst",
	OpBipush:   "bipush",
	OpIadd:     "iadd",
	OpIsub:     "isub",
	OpImul:     "imul",
	OpIdiv:     "idiv",
	OpIrem:     "irem",
	OpPrint:    "print",
	OpReturn:   "return",
	OpIload:    "iload",
	OpIstore:   "istore",
	OpGoto:     "goto",
	OpIinc:     "iinc",
	OpIfIcmpeq: "if_icmpeq",
	OpIfIcmpne: "if_icmpne",
	OpIfIcmpge: "if_icmpge",
	OpIfIcmpgt: "if_icmpgt",
	OpIfIcmple: "if_icmple",
	OpIfIcmplt: "if_icmplt",
	OpIfne:     "ifne",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "Opcode(" + strconv.Itoa(int(o)) + ")"
}

// IsStackPhase reports whether the opcode only touches the operand stack.
func (o Opcode) IsStackPhase() bool {
	return o >= OpIconst && o <= OpReturn
}

// IsBranch reports whether the opcode may redirect control flow.
func (o Opcode) IsBranch() bool {
	return o == OpGoto || (o >= OpIfIcmpeq && o <= OpIfne)
}

// SplitOpcode separates a token into its mnemonic and embedded operand.
// "iconst_2" gives ("iconst", 2). The operand is NoOperand when the token has
// no underscore, when the suffix is not an integer, or when it lies outside
// [0, 5]. Tokens starting with "if" are never split.
func SplitOpcode(token string) (mnemonic string, operand int32) {
	if strings.HasPrefix(token, "if") {
		return token, NoOperand
	}

	prefix, _, found := strings.Cut(token, "_")
	if !found {
		return token, NoOperand
	}

	return prefix, parseEmbeddedOperand(token)
}

// parseEmbeddedOperand parses the text after the first underscore.
func parseEmbeddedOperand(token string) int32 {
	idx := strings.Index(token, "_")
	if idx < 0 || idx == len(token)-1 {
		return NoOperand
	}

	value, err := strconv.Atoi(token[idx+1:])
	if err != nil || value < minEmbeddedOperand || value > maxEmbeddedOperand {
		return NoOperand
	}

	return int32(value)
}

// decodeOpcode resolves a raw token to an operation. Stack-phase mnemonics
// win first, but only when an underscore suffix, if any, is a valid embedded
// operand. Everything else is looked up as a variable-phase mnemonic.
func decodeOpcode(token string) (Opcode, int32) {
	if token == "" {
		return OpUnknown, NoOperand
	}

	prefix, _, hasUnderscore := strings.Cut(token, "_")
	if !hasUnderscore {
		if op, ok := stackOpcodes[token]; ok {
			return op, NoOperand
		}
	} else if operand := parseEmbeddedOperand(token); operand != NoOperand {
		if op, ok := stackOpcodes[prefix]; ok {
			return op, operand
		}
	}

	mnemonic, operand := SplitOpcode(token)
	if op, ok := variableOpcodes[mnemonic]; ok {
		return op, operand
	}

	return OpUnknown, NoOperand
}

// DecodeOpcode returns the operation and embedded operand for a raw token.
func DecodeOpcode(token string) (Opcode, int32) {
	return decodeOpcode(token)
}
