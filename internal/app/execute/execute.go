package execute

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/storage"
	"github.com/slok/progtree/internal/tracker"
)

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ServiceConfig is the configuration for the execute service.
type ServiceConfig struct {
	Repository storage.RunRepository
	// Period is the minimum time between aggregation passes of the run tree.
	Period time.Duration
	// Workers is the max number of steps of a parallel group running at the same time.
	Workers int
	Sleep   SleepFunc
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Period < 0 {
		return fmt.Errorf("period can't be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers can't be negative")
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Execute"})
	return nil
}

// Service executes plans while tracking their progress and stores the result as runs.
type Service struct {
	repo    storage.RunRepository
	period  time.Duration
	workers int
	sleep   SleepFunc
	logger  log.Logger
}

// NewService creates a new execute service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		period:  cfg.Period,
		workers: cfg.Workers,
		sleep:   cfg.Sleep,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the execute request parameters.
type Request struct {
	Plan model.Plan
	// Name is the name of the run, by default the plan name.
	Name string
}

// Prepare registers every step of the plan in a new progress tree and returns
// the execution ready to run. The tree can be observed before and while it runs.
func (s *Service) Prepare(req Request) (*Execution, error) {
	if err := req.Plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if req.Name == "" {
		req.Name = req.Plan.Name
	}

	t, err := tracker.New(tracker.Config{
		Period: s.period,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}

	e := &Execution{
		svc:     s,
		name:    req.Name,
		tracker: t,
	}

	// IDs are assigned in pre-order starting at 1, siblings are ordered by position.
	var nextID model.ActionID
	var register func(parent model.ActionID, steps []model.PlanStep) ([]*node, error)
	register = func(parent model.ActionID, steps []model.PlanStep) ([]*node, error) {
		nodes := make([]*node, 0, len(steps))
		for i, st := range steps {
			nextID++
			n := &node{id: nextID, step: st}
			if err := t.Insert(n.id, parent, i, st.Name); err != nil {
				return nil, fmt.Errorf("could not register step %q: %w", st.Name, err)
			}

			children, err := register(n.id, st.Steps)
			if err != nil {
				return nil, err
			}
			n.children = children
			nodes = append(nodes, n)
		}
		return nodes, nil
	}

	e.steps, err = register(model.RootID, req.Plan.Steps)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("Prepared plan %q with %d steps", req.Plan.Name, t.Len())
	return e, nil
}

type node struct {
	id       model.ActionID
	step     model.PlanStep
	children []*node
}

// Execution is a prepared plan execution.
type Execution struct {
	svc     *Service
	name    string
	tracker *tracker.Tracker
	steps   []*node
	once    sync.Once
}

// Snapshot returns a copy of the current progress tree of the execution.
func (e *Execution) Snapshot() model.ActionTree { return e.tracker.Snapshot() }

// Run executes the plan and stores the run, even when the execution fails or
// ctx is cancelled. An execution can only run once.
func (e *Execution) Run(ctx context.Context) (*model.Run, error) {
	ran := false
	e.once.Do(func() { ran = true })
	if !ran {
		return nil, fmt.Errorf("execution already ran: %w", model.ErrNotValid)
	}

	logger := e.svc.logger.WithValues(log.Kv{"run": e.name})
	createdAt := time.Now().UTC()

	e.tracker.Start(ctx)
	runErr := e.runChildren(ctx, model.RootID, e.steps, false)
	if err := e.tracker.Close(); err != nil {
		logger.Warningf("Could not close tracker: %s", err)
	}
	e.tracker.Flush()

	tree := e.tracker.Snapshot()
	run := model.Run{
		ID:         ulid.MustNew(ulid.Timestamp(createdAt), rand.Reader).String(),
		Name:       e.name,
		Overall:    tree.Overall,
		Actions:    tree.Actions,
		CreatedAt:  createdAt,
		FinishedAt: time.Now().UTC(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	// The run is stored even if the execution was cancelled.
	if err := e.svc.repo.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		return nil, fmt.Errorf("could not save run: %w", err)
	}

	if runErr != nil {
		logger.Warningf("Run %s failed: %s", run.ID, runErr)
		return &run, fmt.Errorf("run failed: %w", runErr)
	}

	logger.Infof("Run %s finished", run.ID)
	return &run, nil
}

// runChildren runs the children of a group. Sequential groups advance over their
// children in order, parallel groups run them at the same time.
func (e *Execution) runChildren(ctx context.Context, parent model.ActionID, children []*node, parallel bool) error {
	if parallel {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(e.svc.workers)
		for _, c := range children {
			g.Go(func() error {
				if err := e.tracker.BeginStep(c.id); err != nil {
					return err
				}
				if err := e.runNode(ctx, c); err != nil {
					return err
				}
				return e.tracker.CompleteStep(c.id)
			})
		}
		return g.Wait()
	}

	for _, c := range children {
		if _, err := e.tracker.Advance(parent); err != nil {
			return fmt.Errorf("could not start step %q: %w", c.step.Name, err)
		}
		if err := e.runNode(ctx, c); err != nil {
			return err
		}
	}

	// Completes the last step, there are no pending ones left.
	_, err := e.tracker.Advance(parent)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}

	return nil
}

func (e *Execution) runNode(ctx context.Context, n *node) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("step %q: %w", n.step.Name, err)
	}

	var err error
	if len(n.children) == 0 {
		err = e.runUnits(ctx, n)
	} else {
		err = e.runChildren(ctx, n.id, n.children, n.step.Parallel)
	}
	if err != nil {
		return fmt.Errorf("step %q: %w", n.step.Name, err)
	}
	return nil
}

func (e *Execution) runUnits(ctx context.Context, n *node) error {
	w := e.tracker.DetailWriter(n.id)
	defer w.Flush()

	units := n.step.Units
	for i := 1; i <= units; i++ {
		if err := e.svc.sleep(ctx, n.step.UnitDuration); err != nil {
			return err
		}

		fmt.Fprintf(w, "unit %d/%d done\n", i, units)
		if err := e.tracker.UpdateStepRatio(n.id, float64(i), float64(units)); err != nil {
			return err
		}
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
