package storage

import (
	"context"

	"github.com/slok/progtree/internal/model"
)

// RunRepository is the interface for run persistence.
type RunRepository interface {
	CreateRun(ctx context.Context, r model.Run) error
	// GetRun returns the run with all its actions.
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns the runs newest first, without their actions.
	ListRuns(ctx context.Context) ([]model.Run, error)
	DeleteRun(ctx context.Context, id string) error
}

// PlanRepository is the interface to get plans to execute.
type PlanRepository interface {
	GetPlan(ctx context.Context, path string) (model.Plan, error)
}
