package model

import (
	"fmt"
	"time"
)

// Run is the stored result of executing a plan.
type Run struct {
	ID         string
	Name       string
	Overall    float64
	Actions    []Action
	Error      string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Validate validates the run.
func (r Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required: %w", ErrNotValid)
	}
	if r.Name == "" {
		return fmt.Errorf("run name is required: %w", ErrNotValid)
	}
	return nil
}
