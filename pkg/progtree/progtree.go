package progtree

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/tracker"
)

// Config configures a Tracker. All fields are optional.
type Config struct {
	// Period is the minimum time between aggregation passes.
	// Default: 1 second.
	Period time.Duration

	// Logger receives structured log output.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

// Tracker tracks a tree of actions. A Tracker is safe for concurrent use.
//
// Create a Tracker with [New], run its aggregation with [Tracker.Start] and
// release it with [Tracker.Close].
type Tracker struct {
	t *tracker.Tracker
}

// New creates a new Tracker with an empty tree.
func New(cfg Config) (*Tracker, error) {
	t, err := tracker.New(tracker.Config{
		Period: cfg.Period,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}

	return &Tracker{t: t}, nil
}

// Start runs the aggregation engine in the background until ctx is done or
// [Tracker.Close] is called.
func (t *Tracker) Start(ctx context.Context) { t.t.Start(ctx) }

// Close stops the aggregation engine after a final pass.
// After Close returns updates are still accepted but parents are only
// recalculated with [Tracker.Flush].
func (t *Tracker) Close() error { return t.t.Close() }

// Flush recalculates the parents of every updated action synchronously.
func (t *Tracker) Flush() { t.t.Flush() }

// InsertAction registers a new pending action under parentID.
//
// It fails with [ErrDuplicateAction] if the ID is used and with
// [ErrInvalidParent] if parentID is not [RootID] and is not registered.
func (t *Tracker) InsertAction(id, parentID ActionID, sortOrder int, text string) error {
	return t.t.Insert(id, parentID, sortOrder, text)
}

// BeginStep moves a pending action to active.
func (t *Tracker) BeginStep(id ActionID) error { return t.t.BeginStep(id) }

// CompleteStep moves an active action to complete.
func (t *Tracker) CompleteStep(id ActionID) error { return t.t.CompleteStep(id) }

// UpdateStep sets the progress of an action, values are clamped to [0, 1].
func (t *Tracker) UpdateStep(id ActionID, value float64) error { return t.t.UpdateStep(id, value) }

// UpdateStepRatio sets the progress of an action as numerator/denominator. A
// denominator that is not positive fails with [ErrNotValid].
func (t *Tracker) UpdateStepRatio(id ActionID, numerator, denominator float64) error {
	return t.t.UpdateStepRatio(id, numerator, denominator)
}

// Advance completes the active children of parentID and begins the next pending
// one, returning its ID. It fails with [ErrNotFound] when no pending child is left.
//
// This allows callers to move through a group of sequential steps without
// knowing which step they are on.
func (t *Tracker) Advance(parentID ActionID) (ActionID, error) { return t.t.Advance(parentID) }

// DetailWriter returns a writer that publishes each written line as the detail
// text of the action.
func (t *Tracker) DetailWriter(id ActionID) DetailWriter { return t.t.DetailWriter(id) }

// Children returns the children of an action in order. Use [RootID] for the root level.
func (t *Tracker) Children(id ActionID) ([]ActionID, error) { return t.t.Children(id) }

// Text returns the text of an action.
func (t *Tracker) Text(id ActionID) (string, error) { return t.t.Text(id) }

// Status returns the status of an action.
func (t *Tracker) Status(id ActionID) (Status, error) { return t.t.Status(id) }

// Progress returns the progress of an action. [RootID] returns the overall progress.
func (t *Tracker) Progress(id ActionID) (float64, error) { return t.t.Progress(id) }

// Action returns a copy of an action.
func (t *Tracker) Action(id ActionID) (Action, error) { return t.t.Get(id) }

// Tree returns a copy of the whole tree.
func (t *Tracker) Tree() Tree { return t.t.Tree() }
