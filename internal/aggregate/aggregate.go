package aggregate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/registry"
	"github.com/slok/progtree/internal/wakeup"
)

const defaultPeriod = time.Second

// EngineConfig is the configuration for the aggregation engine.
type EngineConfig struct {
	Registry *registry.Registry
	// Signal wakes the engine, the registry should release it on every mutation.
	Signal *wakeup.Signal
	// Period is the minimum time between two passes.
	Period time.Duration
	// OnPass is called after every pass with the number of recalculated actions.
	OnPass func(recalculated int)
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Signal == nil {
		return fmt.Errorf("signal is required")
	}
	if c.Period < 0 {
		return fmt.Errorf("period can't be negative")
	}
	if c.Period == 0 {
		c.Period = defaultPeriod
	}
	if c.OnPass == nil {
		c.OnPass = func(int) {}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "aggregate.Engine"})
	return nil
}

// Engine recalculates the progress of the actions that have children as the mean
// of their children progress.
type Engine struct {
	registry *registry.Registry
	signal   *wakeup.Signal
	period   time.Duration
	onPass   func(int)
	stopped  atomic.Bool
	stopOnce sync.Once
	stopC    chan struct{}
	logger   log.Logger
}

// NewEngine returns a new aggregation engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		registry: cfg.Registry,
		signal:   cfg.Signal,
		period:   cfg.Period,
		onPass:   cfg.OnPass,
		stopC:    make(chan struct{}),
		logger:   cfg.Logger,
	}, nil
}

// Pass runs a single aggregation pass and returns the number of recalculated actions.
//
// Children are visited before their parents. Every flagged action gets its flag
// cleared and passes it to its parent, flagged actions with children get the mean
// of their children progress. Running a pass without updates in between is a no-op.
func (e *Engine) Pass() int {
	recalculated := 0

	e.registry.View(func(t registry.Tree) {
		for _, id := range t.PostOrder() {
			if !t.TakeRecalc(id) {
				continue
			}

			if parent, ok := t.Parent(id); ok {
				t.MarkRecalc(parent)
			}

			children := t.Children(id)
			if len(children) == 0 {
				continue
			}

			sum := 0.0
			for _, c := range children {
				sum += t.Progress(c)
			}
			t.SetAggregate(id, sum/float64(len(children)))
			recalculated++
		}
	})

	e.onPass(recalculated)
	return recalculated
}

// Run runs the engine until the context is cancelled or Stop is called. It waits for
// pending updates, runs a pass and waits the configured period before the next one.
// A final pass is run before returning.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debugf("Aggregation engine started with %s period", e.period)
	defer func() {
		e.Pass()
		e.logger.Debugf("Aggregation engine stopped")
	}()

	timer := time.NewTimer(e.period)
	defer timer.Stop()

	for {
		updates, err := e.signal.Acquire(ctx)
		if err != nil || e.stopped.Load() {
			return nil
		}

		n := e.Pass()
		e.logger.Debugf("Aggregation pass recalculated %d actions after %d updates", n, updates)

		timer.Reset(e.period)
		select {
		case <-ctx.Done():
			return nil
		case <-e.stopC:
			return nil
		case <-timer.C:
		}
	}
}

// Stop sets the termination flag, the engine exits on its next wake up.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)
		close(e.stopC)
		e.signal.Release()
	})
}
