package model

import (
	"fmt"
	"time"
)

// Plan is a tree of work steps that can be executed and tracked.
type Plan struct {
	Name  string
	Steps []PlanStep
}

// PlanStep is a single step of a plan. Steps with children are groups, the rest
// are units of work.
type PlanStep struct {
	Name string
	// Units is the number of work units of a leaf step.
	Units int
	// UnitDuration is how long a single unit takes.
	UnitDuration time.Duration
	// Parallel runs the children of a group at the same time.
	Parallel bool
	Steps    []PlanStep
}

// Validate validates the plan.
func (p Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("plan name is required: %w", ErrNotValid)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan requires at least one step: %w", ErrNotValid)
	}
	for i, s := range p.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (s PlanStep) validate() error {
	if s.Name == "" {
		return fmt.Errorf("step name is required: %w", ErrNotValid)
	}
	if s.Units < 0 {
		return fmt.Errorf("step %q units can't be negative: %w", s.Name, ErrNotValid)
	}
	if s.UnitDuration < 0 {
		return fmt.Errorf("step %q unit duration can't be negative: %w", s.Name, ErrNotValid)
	}
	for i, c := range s.Steps {
		if err := c.validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", s.Name, i, err)
		}
	}
	return nil
}

// StepCount returns the total number of steps in the plan, groups included.
func (p Plan) StepCount() int {
	return countSteps(p.Steps)
}

func countSteps(steps []PlanStep) int {
	n := 0
	for _, s := range steps {
		n += 1 + countSteps(s.Steps)
	}
	return n
}
