package core

import (
	"sort"

	"github.com/emirpasic/gods/maps/hashmap"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// State is the mutable machine state of one run: the operand stack, the
// variable store and the cursor into the instruction sequence.
type State struct {
	PC     int // Position in Program.Insts; equal to Len() once halted
	Steps  uint64
	Halted bool

	stack *arraystack.Stack
	vars  *hashmap.Map
}

// NewState returns an empty state positioned at the first instruction.
func NewState() *State {
	return &State{
		stack: arraystack.New(),
		vars:  hashmap.New(),
	}
}

func (s *State) push(v int32) {
	s.stack.Push(v)
}

func (s *State) pop() (int32, error) {
	v, ok := s.stack.Pop()
	if !ok {
		return 0, ErrStackUnderflow
	}
	return v.(int32), nil
}

func (s *State) load(index int32) (int32, error) {
	v, found := s.vars.Get(index)
	if !found {
		return 0, ErrUndefinedVariable
	}
	return v.(int32), nil
}

func (s *State) store(index int32, v int32) {
	s.vars.Put(index, v)
}

// StackDepth returns the number of values on the operand stack.
func (s *State) StackDepth() int {
	return s.stack.Size()
}

// Stack returns the operand stack from bottom to top.
func (s *State) Stack() []int32 {
	values := s.stack.Values() // top first
	out := make([]int32, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v.(int32)
	}
	return out
}

// Variable returns the value stored at index.
func (s *State) Variable(index int32) (int32, bool) {
	v, err := s.load(index)
	return v, err == nil
}

// Variables returns a copy of the variable store.
func (s *State) Variables() map[int32]int32 {
	out := make(map[int32]int32, s.vars.Size())
	for _, k := range s.vars.Keys() {
		v, _ := s.vars.Get(k)
		out[k.(int32)] = v.(int32)
	}
	return out
}

// VariableIndices returns the defined variable indices in ascending order.
func (s *State) VariableIndices() []int32 {
	keys := s.vars.Keys()
	out := make([]int32, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.(int32))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
