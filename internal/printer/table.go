package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/progtree/internal/model"
)

const treeBarWidth = 20

// TablePrinter prints run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunList prints runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tNAME\tRESULT\tOVERALL\tDURATION\tCREATED")

	// Print rows.
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Name,
			runResult(r),
			FormatPercent(r.Overall),
			FormatDuration(r.FinishedAt.Sub(r.CreatedAt)),
			TimeAgo(r.CreatedAt),
		)
	}

	return nil
}

// PrintRun prints a detailed run with its action tree.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "Name:       %s\n", run.Name)
	fmt.Fprintf(t.writer, "ID:         %s\n", run.ID)
	fmt.Fprintf(t.writer, "Result:     %s\n", runResult(run))
	if run.Error != "" {
		fmt.Fprintf(t.writer, "Error:      %s\n", run.Error)
	}
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(run.CreatedAt))
	fmt.Fprintf(t.writer, "Finished:   %s\n", FormatTimestamp(run.FinishedAt))
	fmt.Fprintf(t.writer, "Duration:   %s\n", FormatDuration(run.FinishedAt.Sub(run.CreatedAt)))
	fmt.Fprintln(t.writer)

	return t.PrintTree(model.ActionTree{Overall: run.Overall, Actions: run.Actions})
}

// PrintTree prints an action tree, children indented under their parents.
func (t *TablePrinter) PrintTree(tree model.ActionTree) error {
	pending, active, complete := tree.CountByStatus()
	fmt.Fprintf(t.writer, "Overall:    %s %s (%d pending, %d active, %d complete)\n",
		ProgressBar(tree.Overall, treeBarWidth), FormatPercent(tree.Overall), pending, active, complete)

	if len(tree.Actions) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ACTION\tSTATUS\tPROGRESS\t\tDETAIL")
	for _, a := range tree.Actions {
		indent := strings.Repeat("  ", max(a.Depth-1, 0))
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\n",
			indent,
			a.Text,
			a.Status,
			ProgressBar(a.Progress, treeBarWidth),
			FormatPercent(a.Progress),
			a.Detail,
		)
	}

	return nil
}

// PrintChecks prints check results with a summary line.
func (t *TablePrinter) PrintChecks(results []model.CheckResult) error {
	for _, r := range results {
		fmt.Fprintf(t.writer, "  %s %-20s %s\n", statusIcon(r.Status), r.ID, r.Message)
	}

	s := model.SummarizeChecks(results)
	fmt.Fprintln(t.writer)
	if s.Errors == 0 && s.Warnings == 0 {
		fmt.Fprintln(t.writer, "All checks passed!")
		return nil
	}

	var summary []string
	if s.Errors > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", s.Errors))
	}
	if s.Warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", s.Warnings))
	}
	fmt.Fprintln(t.writer, strings.Join(summary, ", "))

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func statusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}

func runResult(r model.Run) string {
	if r.Error != "" {
		return "failed"
	}
	return "succeeded"
}
