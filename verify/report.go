package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/jvmint/core"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Name         string
	Instructions int
	Offsets      int
	LintIssues   []Issue
	StructIssues []Issue
	FlowIssues   []Issue
}

// GenerateReport lints the program and groups the issues by type.
func GenerateReport(name string, prog core.Program) *VerificationReport {
	report := &VerificationReport{
		Name:         name,
		Instructions: prog.Len(),
		Offsets:      len(prog.Offsets()),
		LintIssues:   RunLint(prog),
	}

	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.FlowIssues = append(report.FlowIssues, issue)
		}
	}

	return report
}

// OK reports whether the program passed every check.
func (r *VerificationReport) OK() bool {
	return len(r.LintIssues) == 0
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "PROGRAM LINT REPORT: %s\n", r.Name)
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Instructions: %d, distinct offsets: %d\n", r.Instructions, r.Offsets)

	if r.OK() {
		fmt.Fprintln(w, "✓ No lint issues found!")
		fmt.Fprintln(w)
		return
	}

	issueTable := table.NewWriter()
	issueTable.SetOutputMirror(w)
	issueTable.AppendHeader(table.Row{"#", "Type", "Pos", "Offset", "Opcode", "Message"})
	for i, issue := range r.LintIssues {
		issueTable.AppendRow(table.Row{
			i + 1, issue.Type, issue.Position, issue.Offset, issue.Opcode, issue.Message,
		})
	}
	issueTable.Render()

	fmt.Fprintf(w, "⚠ %d issues (%d STRUCT, %d FLOW)\n\n",
		len(r.LintIssues), len(r.StructIssues), len(r.FlowIssues))
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
