package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace sits below Debug so per-instruction records are off unless
// asked for.
const LevelTrace slog.Level = slog.LevelDebug - 4

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState renders the operand stack and the variable store as tables.
func PrintState(w io.Writer, state *State) {
	fmt.Fprintf(w, "==============State@PC %d (steps %d)==============\n", state.PC, state.Steps)

	stackTable := table.NewWriter()
	stackTable.SetTitle("Operand Stack (top first)")
	stackTable.AppendHeader(table.Row{"Depth", "Value"})
	stack := state.Stack()
	for i := len(stack) - 1; i >= 0; i-- {
		stackTable.AppendRow(table.Row{len(stack) - 1 - i, stack[i]})
	}
	fmt.Fprintln(w, stackTable.Render())
	fmt.Fprintln(w)

	varTable := table.NewWriter()
	varTable.SetTitle("Variables")
	varTable.AppendHeader(table.Row{"Index", "Value"})
	for _, idx := range state.VariableIndices() {
		v, _ := state.Variable(idx)
		varTable.AppendRow(table.Row{idx, v})
	}
	fmt.Fprintln(w, varTable.Render())
	fmt.Fprintln(w, "================================================")
}

func LogState(state *State) {
	slog.Debug("StateCheckpoint",
		"PC", state.PC,
		"Steps", state.Steps,
		"Halted", state.Halted,
		"Stack", state.Stack(),
		"Variables", state.Variables(),
	)
}
