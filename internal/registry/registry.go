// Package registry owns the action items of a progress tree and the
// parent/children index between them.
//
// Membership and the index are guarded by a registry level lock, the mutable
// fields of every item by the item's own lock. The registry lock is always taken
// before an item lock and no more than one item lock is held at a time, so
// updates on different items never contend with each other.
package registry

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
)

// Notifier is notified every time an item is mutated.
type Notifier interface {
	Release()
}

type noopNotifier struct{}

func (noopNotifier) Release() {}

// Config is the configuration for the registry.
type Config struct {
	// Notifier receives one release per mutation, normally the aggregation engine signal.
	Notifier Notifier
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Notifier == nil {
		c.Notifier = noopNotifier{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "registry.Registry"})
	return nil
}

type item struct {
	// Immutable after creation.
	id        model.ActionID
	parentID  model.ActionID
	sortOrder int
	text      string

	mu       sync.RWMutex
	status   model.ActionStatus
	progress float64
	detail   string
	recalc   bool
}

func (it *item) action() model.Action {
	it.mu.RLock()
	defer it.mu.RUnlock()

	return model.Action{
		ID:        it.id,
		ParentID:  it.parentID,
		SortOrder: it.sortOrder,
		Text:      it.text,
		Status:    it.status,
		Progress:  it.progress,
		Detail:    it.detail,
	}
}

// Registry is the set of action items of a progress tree. It's safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	items    map[model.ActionID]*item
	children map[model.ActionID][]*item

	notifier Notifier
	logger   log.Logger
}

// New returns a new registry that only has the implicit root.
func New(cfg Config) (*Registry, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	root := &item{id: model.RootID, status: model.ActionStatusPending}

	return &Registry{
		items:    map[model.ActionID]*item{model.RootID: root},
		children: map[model.ActionID][]*item{},
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// Insert registers a new pending action under parentID. A zero parentID places the
// action at the root level. Siblings are ordered by sort order and then by insertion
// order.
func (r *Registry) Insert(id, parentID model.ActionID, sortOrder int, text string) error {
	if id == model.RootID {
		return fmt.Errorf("action %d is reserved for the root: %w", id, model.ErrDuplicateAction)
	}

	r.mu.Lock()
	if _, ok := r.items[id]; ok {
		r.mu.Unlock()
		return fmt.Errorf("action %d: %w", id, model.ErrDuplicateAction)
	}
	if _, ok := r.items[parentID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("action %d parent %d: %w", id, parentID, model.ErrInvalidParent)
	}

	it := &item{
		id:        id,
		parentID:  parentID,
		sortOrder: sortOrder,
		text:      text,
		status:    model.ActionStatusPending,
		recalc:    true,
	}
	r.items[id] = it

	siblings := r.children[parentID]
	pos := sort.Search(len(siblings), func(i int) bool { return siblings[i].sortOrder > sortOrder })
	r.children[parentID] = slices.Insert(siblings, pos, it)
	r.mu.Unlock()

	r.notifier.Release()
	r.logger.Debugf("Inserted action %d under %d", id, parentID)

	return nil
}

// BeginStep moves a pending action to active.
func (r *Registry) BeginStep(id model.ActionID) error {
	return r.mutate(id, func(it *item) error {
		if !it.status.CanTransitionTo(model.ActionStatusActive) {
			return fmt.Errorf("action %d is %s: %w", id, it.status, model.ErrOutOfOrderTransition)
		}
		it.status = model.ActionStatusActive
		return nil
	})
}

// CompleteStep moves an active action to complete and sets its progress to the maximum.
func (r *Registry) CompleteStep(id model.ActionID) error {
	return r.mutate(id, func(it *item) error {
		if !it.status.CanTransitionTo(model.ActionStatusComplete) {
			return fmt.Errorf("action %d is %s: %w", id, it.status, model.ErrOutOfOrderTransition)
		}
		it.status = model.ActionStatusComplete
		it.progress = 1
		return nil
	})
}

// UpdateStep sets the progress of an action. Values are clamped to [0, 1].
func (r *Registry) UpdateStep(id model.ActionID, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("action %d progress %v: %w", id, value, model.ErrNotValid)
	}

	value = math.Min(math.Max(value, 0), 1)

	return r.mutate(id, func(it *item) error {
		it.progress = value
		return nil
	})
}

// UpdateStepRatio sets the progress of an action as numerator/denominator.
// The denominator must be positive.
func (r *Registry) UpdateStepRatio(id model.ActionID, numerator, denominator float64) error {
	if !(denominator > 0) {
		return fmt.Errorf("action %d progress denominator %v must be positive: %w", id, denominator, model.ErrNotValid)
	}

	return r.UpdateStep(id, numerator/denominator)
}

// SetDetail sets the latest free text line of an action.
func (r *Registry) SetDetail(id model.ActionID, detail string) error {
	return r.mutate(id, func(it *item) error {
		it.detail = detail
		return nil
	})
}

// Advance completes the active children of parentID and begins the first pending
// one in order, returning its ID. It's meant for step groups driven sequentially by
// a single caller. When there are no pending children left it returns ErrNotFound.
func (r *Registry) Advance(parentID model.ActionID) (model.ActionID, error) {
	r.mu.RLock()
	if _, ok := r.items[parentID]; !ok {
		r.mu.RUnlock()
		return 0, fmt.Errorf("action %d: %w", parentID, model.ErrUnknownAction)
	}

	changes := 0
	var next *item
	for _, it := range r.children[parentID] {
		it.mu.Lock()
		switch {
		case it.status == model.ActionStatusActive:
			it.status = model.ActionStatusComplete
			it.progress = 1
			it.recalc = true
			changes++
		case it.status == model.ActionStatusPending && next == nil:
			it.status = model.ActionStatusActive
			it.recalc = true
			next = it
			changes++
		}
		it.mu.Unlock()
	}
	r.mu.RUnlock()

	for i := 0; i < changes; i++ {
		r.notifier.Release()
	}

	if next == nil {
		return 0, fmt.Errorf("no pending step under action %d: %w", parentID, model.ErrNotFound)
	}

	r.logger.Debugf("Advanced to action %d under %d", next.id, parentID)
	return next.id, nil
}

// mutate runs fn with the item exclusively locked and flags it for recalculation
// when fn succeeds.
func (r *Registry) mutate(id model.ActionID, fn func(it *item) error) error {
	r.mu.RLock()
	it, ok := r.items[id]
	if !ok || id == model.RootID {
		r.mu.RUnlock()
		return fmt.Errorf("action %d: %w", id, model.ErrUnknownAction)
	}

	it.mu.Lock()
	err := fn(it)
	if err == nil {
		it.recalc = true
	}
	it.mu.Unlock()
	r.mu.RUnlock()

	if err != nil {
		return err
	}

	r.notifier.Release()
	return nil
}
