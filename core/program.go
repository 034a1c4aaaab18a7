package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"gopkg.in/yaml.v3"
)

// Program is an instruction sequence in source order together with an index
// from declared offset to sequence position.
type Program struct {
	Insts []Instruction

	offsets *treemap.Map // offset → position in Insts
}

// NewProgram builds the offset index over insts. If an offset is declared more
// than once, the last declaration is the jump target.
func NewProgram(insts []Instruction) Program {
	p := Program{
		Insts:   insts,
		offsets: treemap.NewWithIntComparator(),
	}

	for pos, inst := range insts {
		p.offsets.Put(inst.Offset, pos)
	}

	return p
}

// Len returns the number of instructions.
func (p Program) Len() int {
	return len(p.Insts)
}

// Lookup returns the sequence position of the instruction at offset.
func (p Program) Lookup(offset int) (int, bool) {
	if p.offsets == nil {
		return -1, false
	}

	pos, found := p.offsets.Get(offset)
	if !found {
		return -1, false
	}

	return pos.(int), true
}

// Offsets lists the indexed offsets in ascending order.
func (p Program) Offsets() []int {
	if p.offsets == nil {
		return nil
	}

	keys := p.offsets.Keys()
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.(int))
	}

	return out
}

// DuplicateOffsets returns offsets declared by more than one instruction,
// in order of first repetition.
func (p Program) DuplicateOffsets() []int {
	seen := make(map[int]int, len(p.Insts))
	var dups []int

	for _, inst := range p.Insts {
		seen[inst.Offset]++
		if seen[inst.Offset] == 2 {
			dups = append(dups, inst.Offset)
		}
	}

	return dups
}

func (p Program) String() string {
	var sb strings.Builder
	for i, inst := range p.Insts {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(inst.String())
	}
	return sb.String()
}

// LoadProgram reads one instruction per line. Blank lines are skipped.
func LoadProgram(r io.Reader) (Program, error) {
	var insts []Instruction

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		inst, err := ParseInstruction(line)
		if err != nil {
			return Program{}, err
		}
		insts = append(insts, inst)
	}

	if err := scanner.Err(); err != nil {
		return Program{}, fmt.Errorf("read program: %w", err)
	}

	return NewProgram(insts), nil
}

// LoadProgramFile loads a program in the text instruction format.
func LoadProgramFile(path string) (Program, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Program{}, fmt.Errorf("file not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Program{}, fmt.Errorf("file not found: %s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Program{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return LoadProgram(f)
}

type yamlInstruction struct {
	Offset int     `yaml:"offset"`
	Opcode string  `yaml:"opcode"`
	Params []int32 `yaml:"params"`
}

type yamlProgram struct {
	Instructions []yamlInstruction `yaml:"instructions"`
}

// LoadProgramFileFromYAML loads a program stored as a YAML list:
//
//	instructions:
//	  - {offset: 0, opcode: iconst_1}
//	  - {offset: 1, opcode: bipush, params: [6]}
func LoadProgramFileFromYAML(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, fmt.Errorf("file not found: %w", err)
	}
	defer f.Close()

	return LoadProgramFromYAML(f)
}

// LoadProgramFromYAML decodes the YAML program form from r.
func LoadProgramFromYAML(r io.Reader) (Program, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw yamlProgram
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return NewProgram(nil), nil
		}
		return Program{}, &ParseError{Line: "<yaml>", Reason: "invalid program", Err: err}
	}

	insts := make([]Instruction, 0, len(raw.Instructions))
	for i, ri := range raw.Instructions {
		if ri.Opcode == "" {
			return Program{}, &ParseError{
				Line:   fmt.Sprintf("instructions[%d]", i),
				Reason: "missing opcode",
			}
		}
		if len(ri.Params) > maxTokens-2 {
			return Program{}, &ParseError{
				Line:   fmt.Sprintf("instructions[%d]", i),
				Reason: "illegal format: too many parameters",
			}
		}
		insts = append(insts, NewInstruction(ri.Offset, ri.Opcode, ri.Params...))
	}

	return NewProgram(insts), nil
}
