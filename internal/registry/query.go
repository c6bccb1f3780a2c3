package registry

import (
	"fmt"

	"github.com/slok/progtree/internal/model"
)

// Get returns a copy of an action.
func (r *Registry) Get(id model.ActionID) (model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || id == model.RootID {
		return model.Action{}, fmt.Errorf("action %d: %w", id, model.ErrUnknownAction)
	}

	a := it.action()
	a.Depth = r.depth(it)
	return a, nil
}

// Text returns the text of an action.
func (r *Registry) Text(id model.ActionID) (string, error) {
	a, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

// Status returns the status of an action.
func (r *Registry) Status(id model.ActionID) (model.ActionStatus, error) {
	a, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return a.Status, nil
}

// Progress returns the progress of an action. The root progress is the aggregate
// of the root level actions.
func (r *Registry) Progress(id model.ActionID) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return 0, fmt.Errorf("action %d: %w", id, model.ErrUnknownAction)
	}

	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.progress, nil
}

// Children returns the IDs of the children of an action in order.
func (r *Registry) Children(id model.ActionID) ([]model.ActionID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.items[id]; !ok {
		return nil, fmt.Errorf("action %d: %w", id, model.ErrUnknownAction)
	}

	return r.childIDs(id), nil
}

// Len returns the number of registered actions, the root is not counted.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items) - 1
}

// Snapshot returns a copy of the whole tree in pre-order.
func (r *Registry) Snapshot() model.ActionTree {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]model.Action, 0, len(r.items)-1)
	var walk func(id model.ActionID, depth int)
	walk = func(id model.ActionID, depth int) {
		for _, it := range r.children[id] {
			a := it.action()
			a.Depth = depth
			actions = append(actions, a)
			walk(it.id, depth+1)
		}
	}
	walk(model.RootID, 1)

	root := r.items[model.RootID]
	root.mu.RLock()
	overall := root.progress
	root.mu.RUnlock()

	return model.ActionTree{
		Overall: overall,
		Actions: actions,
	}
}

// childIDs requires the registry lock to be held.
func (r *Registry) childIDs(id model.ActionID) []model.ActionID {
	children := r.children[id]
	ids := make([]model.ActionID, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.id)
	}
	return ids
}

// depth requires the registry lock to be held.
func (r *Registry) depth(it *item) int {
	d := 0
	for it.id != model.RootID {
		d++
		it = r.items[it.parentID]
	}
	return d
}
