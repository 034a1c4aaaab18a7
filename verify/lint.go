// Package verify provides static checks over interpreter programs.
//
// RunLint never changes how a program evaluates. A program with lint issues
// still runs; duplicate offsets, for example, keep last-write-wins jump
// resolution. The checks point at programs that are likely to fault or to
// behave differently from what their author intended:
//
//   - STRUCT: negative or duplicate offsets, unknown opcodes, missing
//     parameters, load/store without a variable index
//   - FLOW: jump targets absent from the offset index
package verify

import (
	"fmt"

	"github.com/sarchlab/jvmint/core"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Malformed instruction or program layout
	IssueFlow   IssueType = "FLOW"   // Control transfer that cannot resolve
)

// Issue represents a single lint issue
type Issue struct {
	Type     IssueType
	Position int // Index in the instruction sequence, -1 if not applicable
	Offset   int
	Opcode   string
	Message  string
	Details  map[string]interface{}
}

// requiredParams is the number of explicit parameters each opcode reads.
var requiredParams = map[core.Opcode]int{
	core.OpBipush:   1,
	core.OpGoto:     1,
	core.OpIinc:     2,
	core.OpIfIcmpeq: 1,
	core.OpIfIcmpne: 1,
	core.OpIfIcmpge: 1,
	core.OpIfIcmpgt: 1,
	core.OpIfIcmple: 1,
	core.OpIfIcmplt: 1,
	core.OpIfne:     1,
}

// RunLint performs static checks on a program and returns the issues found,
// in sequence order per check.
func RunLint(prog core.Program) []Issue {
	var issues []Issue

	for _, offset := range prog.DuplicateOffsets() {
		pos, _ := prog.Lookup(offset)
		issues = append(issues, Issue{
			Type:     IssueStruct,
			Position: pos,
			Offset:   offset,
			Opcode:   prog.Insts[pos].Opcode,
			Message: fmt.Sprintf(
				"offset %d declared more than once; jumps resolve to position %d",
				offset, pos),
			Details: map[string]interface{}{"resolved_position": pos},
		})
	}

	for pos, inst := range prog.Insts {
		issues = append(issues, lintInstruction(prog, pos, inst)...)
	}

	return issues
}

func lintInstruction(prog core.Program, pos int, inst core.Instruction) []Issue {
	var issues []Issue

	newIssue := func(t IssueType, msg string) Issue {
		return Issue{
			Type:     t,
			Position: pos,
			Offset:   inst.Offset,
			Opcode:   inst.Opcode,
			Message:  msg,
		}
	}

	if inst.Offset < 0 {
		issues = append(issues, newIssue(IssueStruct, "negative offset"))
	}

	op := inst.Op()
	if op == core.OpUnknown {
		issues = append(issues, newIssue(IssueStruct,
			fmt.Sprintf("unknown opcode %q is skipped at run time", inst.Opcode)))
		return issues
	}

	if want, ok := requiredParams[op]; ok && inst.NumParams() < want {
		issue := newIssue(IssueStruct,
			fmt.Sprintf("%s needs %d parameter(s), has %d", op, want, inst.NumParams()))
		issue.Details = map[string]interface{}{"required": want, "actual": inst.NumParams()}
		issues = append(issues, issue)
	}

	if (op == core.OpIload || op == core.OpIstore) &&
		inst.EmbeddedOperand() == core.NoOperand && inst.NumParams() != 1 {
		issues = append(issues, newIssue(IssueStruct,
			fmt.Sprintf("%s has no variable index", op)))
	}

	if op.IsBranch() && inst.NumParams() >= 1 {
		target := int(inst.Params[0])
		if _, found := prog.Lookup(target); !found {
			issue := newIssue(IssueFlow,
				fmt.Sprintf("jump target %d is not a declared offset", target))
			issue.Details = map[string]interface{}{"target": target}
			issues = append(issues, issue)
		}
	}

	return issues
}
