package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/progtree/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runListItem represents a run in the list output (subset of fields).
type runListItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Overall    float64   `json:"overall"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// runOutput represents the full run output.
type runOutput struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Overall    float64        `json:"overall"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Actions    []actionOutput `json:"actions"`
}

type treeOutput struct {
	Overall float64        `json:"overall"`
	Actions []actionOutput `json:"actions"`
}

type actionOutput struct {
	ID       uint32  `json:"id"`
	ParentID uint32  `json:"parent_id"`
	Text     string  `json:"text"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Detail   string  `json:"detail,omitempty"`
	Depth    int     `json:"depth"`
}

type checkOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type checksOutput struct {
	Checks   []checkOutput `json:"checks"`
	OK       int           `json:"ok"`
	Warnings int           `json:"warnings"`
	Errors   int           `json:"errors"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunList prints runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]runListItem, len(runs))
	for i, r := range runs {
		items[i] = runListItem{
			ID:         r.ID,
			Name:       r.Name,
			Overall:    r.Overall,
			Error:      r.Error,
			CreatedAt:  r.CreatedAt.UTC(),
			FinishedAt: r.FinishedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintRun prints a run with its actions in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	return j.encode(runOutput{
		ID:         run.ID,
		Name:       run.Name,
		Overall:    run.Overall,
		Error:      run.Error,
		CreatedAt:  run.CreatedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Actions:    mapActions(run.Actions),
	})
}

// PrintTree prints an action tree in JSON format.
func (j *JSONPrinter) PrintTree(tree model.ActionTree) error {
	return j.encode(treeOutput{
		Overall: tree.Overall,
		Actions: mapActions(tree.Actions),
	})
}

// PrintChecks prints check results in JSON format.
func (j *JSONPrinter) PrintChecks(results []model.CheckResult) error {
	s := model.SummarizeChecks(results)
	output := checksOutput{
		Checks:   make([]checkOutput, len(results)),
		OK:       s.OK,
		Warnings: s.Warnings,
		Errors:   s.Errors,
	}
	for i, r := range results {
		output.Checks[i] = checkOutput{ID: r.ID, Status: string(r.Status), Message: r.Message}
	}

	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapActions(actions []model.Action) []actionOutput {
	res := make([]actionOutput, len(actions))
	for i, a := range actions {
		res[i] = actionOutput{
			ID:       uint32(a.ID),
			ParentID: uint32(a.ParentID),
			Text:     a.Text,
			Status:   string(a.Status),
			Progress: a.Progress,
			Detail:   a.Detail,
			Depth:    a.Depth,
		}
	}
	return res
}
