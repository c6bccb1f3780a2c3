// Package tracker wires an action registry with its aggregation engine.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/progtree/internal/aggregate"
	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/registry"
	"github.com/slok/progtree/internal/wakeup"
)

// Config is the configuration for the tracker.
type Config struct {
	// Period is the minimum time between aggregation passes.
	Period time.Duration
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Period < 0 {
		return fmt.Errorf("period can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Tracker is a progress tree whose parents are kept up to date by a background
// aggregation engine. Updates are safe from any goroutine.
type Tracker struct {
	*registry.Registry

	engine *aggregate.Engine
	logger log.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a new tracker, the engine doesn't run until Start is called.
func New(cfg Config) (*Tracker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	signal := wakeup.New()
	reg, err := registry.New(registry.Config{
		Notifier: signal,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create registry: %w", err)
	}

	engine, err := aggregate.NewEngine(aggregate.EngineConfig{
		Registry: reg,
		Signal:   signal,
		Period:   cfg.Period,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create aggregation engine: %w", err)
	}

	return &Tracker{
		Registry: reg,
		engine:   engine,
		logger:   cfg.Logger.WithValues(log.Kv{"svc": "tracker.Tracker"}),
	}, nil
}

// Start runs the aggregation engine in the background until ctx is cancelled or
// Close is called. Calling it more than once has no effect.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return
	}
	t.started = true

	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go func() {
		defer close(t.done)
		_ = t.engine.Run(ctx)
	}()
}

// Run runs the aggregation engine in the calling goroutine until ctx is cancelled
// or Close is called.
func (t *Tracker) Run(ctx context.Context) error {
	return t.engine.Run(ctx)
}

// Close stops the engine and waits for its final pass.
func (t *Tracker) Close() error {
	t.engine.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return nil
	}

	t.cancel()
	<-t.done
	t.logger.Debugf("Tracker closed")
	return nil
}

// Flush runs an aggregation pass in the calling goroutine.
func (t *Tracker) Flush() {
	t.engine.Pass()
}

// Tree returns a snapshot of the current tree.
func (t *Tracker) Tree() model.ActionTree {
	return t.Snapshot()
}
