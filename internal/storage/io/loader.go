package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/progtree/internal/model"
)

// PlanYAMLRepository loads execution plans from YAML files.
type PlanYAMLRepository struct {
	fs fs.FS
}

// NewPlanYAMLRepository creates a new YAML plan repository.
func NewPlanYAMLRepository(filesystem fs.FS) *PlanYAMLRepository {
	return &PlanYAMLRepository{fs: filesystem}
}

// GetPlan loads a plan from a YAML file and returns a validated domain model.
func (r *PlanYAMLRepository) GetPlan(ctx context.Context, path string) (model.Plan, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Plan{}, fmt.Errorf("reading plan file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Plan{}, ctx.Err()
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return model.Plan{}, fmt.Errorf("parsing YAML: %w", err)
	}

	plan, err := p.toModel()
	if err != nil {
		return model.Plan{}, fmt.Errorf("invalid plan: %w", err)
	}

	if err := plan.Validate(); err != nil {
		return model.Plan{}, fmt.Errorf("invalid plan: %w", err)
	}

	return plan, nil
}

// Plan represents the YAML structure of a plan.
type Plan struct {
	Name  string     `yaml:"name"`
	Steps []PlanStep `yaml:"steps"`
}

// PlanStep represents the YAML structure of a plan step.
type PlanStep struct {
	Name         string     `yaml:"name"`
	Units        int        `yaml:"units"`
	UnitDuration string     `yaml:"unit_duration"`
	Parallel     bool       `yaml:"parallel"`
	Steps        []PlanStep `yaml:"steps"`
}

func (p Plan) toModel() (model.Plan, error) {
	steps, err := stepsToModel(p.Steps)
	if err != nil {
		return model.Plan{}, err
	}

	return model.Plan{
		Name:  p.Name,
		Steps: steps,
	}, nil
}

func stepsToModel(steps []PlanStep) ([]model.PlanStep, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	res := make([]model.PlanStep, 0, len(steps))
	for _, s := range steps {
		var d time.Duration
		if s.UnitDuration != "" {
			var err error
			d, err = time.ParseDuration(s.UnitDuration)
			if err != nil {
				return nil, fmt.Errorf("step %q unit_duration: %w", s.Name, model.ErrNotValid)
			}
		}

		children, err := stepsToModel(s.Steps)
		if err != nil {
			return nil, err
		}

		res = append(res, model.PlanStep{
			Name:         s.Name,
			Units:        s.Units,
			UnitDuration: d,
			Parallel:     s.Parallel,
			Steps:        children,
		})
	}

	return res, nil
}
