package registry

import (
	"github.com/slok/progtree/internal/model"
)

// Tree is a view over the registry structure used by aggregation passes. The
// membership can't change while a Tree is in use, item values still can.
//
// A Tree is only valid inside the View callback that received it.
type Tree struct {
	r *Registry
}

// View calls fn with the registry structure read locked.
func (r *Registry) View(fn func(t Tree)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn(Tree{r: r})
}

// PostOrder returns every ID in the tree with children before their parents. The
// root is always the last one.
func (t Tree) PostOrder() []model.ActionID {
	ids := make([]model.ActionID, 0, len(t.r.items))
	var walk func(id model.ActionID)
	walk = func(id model.ActionID) {
		for _, c := range t.r.children[id] {
			walk(c.id)
		}
		ids = append(ids, id)
	}
	walk(model.RootID)
	return ids
}

// Children returns the children IDs of an action in order.
func (t Tree) Children(id model.ActionID) []model.ActionID {
	return t.r.childIDs(id)
}

// Parent returns the parent ID of an action. The root and unknown IDs have no parent.
func (t Tree) Parent(id model.ActionID) (model.ActionID, bool) {
	it, ok := t.r.items[id]
	if !ok || id == model.RootID {
		return 0, false
	}
	return it.parentID, true
}

// Progress returns the current progress of an action.
func (t Tree) Progress(id model.ActionID) float64 {
	it, ok := t.r.items[id]
	if !ok {
		return 0
	}

	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.progress
}

// TakeRecalc clears the recalculation flag of an action and returns its previous value.
func (t Tree) TakeRecalc(id model.ActionID) bool {
	it, ok := t.r.items[id]
	if !ok {
		return false
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	flagged := it.recalc
	it.recalc = false
	return flagged
}

// MarkRecalc flags an action for recalculation.
func (t Tree) MarkRecalc(id model.ActionID) {
	it, ok := t.r.items[id]
	if !ok {
		return
	}

	it.mu.Lock()
	it.recalc = true
	it.mu.Unlock()
}

// SetAggregate stores an aggregated progress value and returns true if it changed.
func (t Tree) SetAggregate(id model.ActionID, value float64) bool {
	it, ok := t.r.items[id]
	if !ok {
		return false
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	if it.progress == value {
		return false
	}
	it.progress = value
	return true
}
