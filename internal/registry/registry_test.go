package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/registry"
)

type countNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countNotifier) Release() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type insert struct {
	id, parent model.ActionID
	sortOrder  int
	text       string
}

func newRegistry(t *testing.T, inserts ...insert) *registry.Registry {
	t.Helper()

	r, err := registry.New(registry.Config{})
	require.NoError(t, err)
	for _, i := range inserts {
		require.NoError(t, r.Insert(i.id, i.parent, i.sortOrder, i.text))
	}
	return r
}

func TestRegistryInsert(t *testing.T) {
	tests := map[string]struct {
		inserts     []insert
		insert      insert
		expErr      error
		expChildren map[model.ActionID][]model.ActionID
	}{
		"Inserting a root level action should work": {
			insert:      insert{id: 1, parent: 0, text: "a"},
			expChildren: map[model.ActionID][]model.ActionID{0: {1}},
		},
		"Inserting a child of an existing action should work": {
			inserts:     []insert{{id: 1, parent: 0, text: "a"}},
			insert:      insert{id: 3, parent: 1, text: "c"},
			expChildren: map[model.ActionID][]model.ActionID{0: {1}, 1: {3}},
		},
		"Children should be ordered by sort order and then by insertion": {
			inserts: []insert{
				{id: 1, parent: 0, sortOrder: 2, text: "a"},
				{id: 2, parent: 0, sortOrder: 1, text: "b"},
				{id: 3, parent: 0, sortOrder: 2, text: "c"},
			},
			insert:      insert{id: 4, parent: 0, sortOrder: 0, text: "d"},
			expChildren: map[model.ActionID][]model.ActionID{0: {4, 2, 1, 3}},
		},
		"Inserting a duplicated ID should fail": {
			inserts: []insert{{id: 1, parent: 0, text: "a"}},
			insert:  insert{id: 1, parent: 0, text: "b"},
			expErr:  model.ErrDuplicateAction,
		},
		"Inserting the root ID should fail": {
			insert: insert{id: 0, parent: 0, text: "root"},
			expErr: model.ErrDuplicateAction,
		},
		"Inserting under an unknown parent should fail": {
			insert: insert{id: 5, parent: 99, text: "x"},
			expErr: model.ErrInvalidParent,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			r := newRegistry(t, test.inserts...)
			err := r.Insert(test.insert.id, test.insert.parent, test.insert.sortOrder, test.insert.text)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			for parent, exp := range test.expChildren {
				got, err := r.Children(parent)
				require.NoError(err)
				assert.Equal(exp, got)
			}

			text, err := r.Text(test.insert.id)
			require.NoError(err)
			assert.Equal(test.insert.text, text)
		})
	}
}

func TestRegistryInsertErrorKinds(t *testing.T) {
	assert := assert.New(t)

	r := newRegistry(t, insert{id: 1, parent: 0, text: "a"})

	assert.ErrorIs(r.Insert(1, 0, 0, "a"), model.ErrAlreadyExists)
	assert.ErrorIs(r.Insert(5, 99, 0, "x"), model.ErrNotValid)
	assert.ErrorIs(r.BeginStep(42), model.ErrNotFound)
}

func TestRegistryStatusTransitions(t *testing.T) {
	tests := map[string]struct {
		steps  func(r *registry.Registry) error
		expErr error
		exp    model.ActionStatus
	}{
		"Begin on a pending action should activate it": {
			steps: func(r *registry.Registry) error { return r.BeginStep(1) },
			exp:   model.ActionStatusActive,
		},
		"Begin and complete should complete the action": {
			steps: func(r *registry.Registry) error {
				if err := r.BeginStep(1); err != nil {
					return err
				}
				return r.CompleteStep(1)
			},
			exp: model.ActionStatusComplete,
		},
		"Beginning an active action should fail": {
			steps: func(r *registry.Registry) error {
				if err := r.BeginStep(1); err != nil {
					return err
				}
				return r.BeginStep(1)
			},
			expErr: model.ErrOutOfOrderTransition,
			exp:    model.ActionStatusActive,
		},
		"Completing a pending action should fail": {
			steps:  func(r *registry.Registry) error { return r.CompleteStep(1) },
			expErr: model.ErrOutOfOrderTransition,
			exp:    model.ActionStatusPending,
		},
		"Beginning a complete action should fail": {
			steps: func(r *registry.Registry) error {
				_ = r.BeginStep(1)
				_ = r.CompleteStep(1)
				return r.BeginStep(1)
			},
			expErr: model.ErrOutOfOrderTransition,
			exp:    model.ActionStatusComplete,
		},
		"Completing a complete action should fail": {
			steps: func(r *registry.Registry) error {
				_ = r.BeginStep(1)
				_ = r.CompleteStep(1)
				return r.CompleteStep(1)
			},
			expErr: model.ErrOutOfOrderTransition,
			exp:    model.ActionStatusComplete,
		},
		"Beginning an unknown action should fail": {
			steps:  func(r *registry.Registry) error { return r.BeginStep(7) },
			expErr: model.ErrUnknownAction,
			exp:    model.ActionStatusPending,
		},
		"Completing an unknown action should fail": {
			steps:  func(r *registry.Registry) error { return r.CompleteStep(7) },
			expErr: model.ErrUnknownAction,
			exp:    model.ActionStatusPending,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			r := newRegistry(t, insert{id: 1, parent: 0, text: "a"})
			err := test.steps(r)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}

			status, err := r.Status(1)
			require.NoError(err)
			assert.Equal(test.exp, status)
		})
	}
}

func TestRegistryCompleteSetsFullProgress(t *testing.T) {
	require := require.New(t)

	r := newRegistry(t, insert{id: 1, parent: 0, text: "a"})
	require.NoError(r.BeginStep(1))
	require.NoError(r.UpdateStep(1, 0.3))
	require.NoError(r.CompleteStep(1))

	p, err := r.Progress(1)
	require.NoError(err)
	require.Equal(1.0, p)
}

func TestRegistryUpdateStep(t *testing.T) {
	tests := map[string]struct {
		update      func(r *registry.Registry) error
		expErr      error
		expProgress float64
	}{
		"Updating with a value should store it": {
			update:      func(r *registry.Registry) error { return r.UpdateStep(1, 0.25) },
			expProgress: 0.25,
		},
		"Updating with a ratio should store the division": {
			update:      func(r *registry.Registry) error { return r.UpdateStepRatio(1, 3, 4) },
			expProgress: 0.75,
		},
		"Values over the maximum should be clamped": {
			update:      func(r *registry.Registry) error { return r.UpdateStep(1, 1.5) },
			expProgress: 1,
		},
		"Values under the minimum should be clamped": {
			update:      func(r *registry.Registry) error { return r.UpdateStep(1, -2) },
			expProgress: 0,
		},
		"A zero denominator should fail": {
			update: func(r *registry.Registry) error { return r.UpdateStepRatio(1, 3, 0) },
			expErr: model.ErrNotValid,
		},
		"A negative denominator should fail": {
			update: func(r *registry.Registry) error { return r.UpdateStepRatio(1, 3, -1) },
			expErr: model.ErrNotValid,
		},
		"Updating an unknown action should fail": {
			update: func(r *registry.Registry) error { return r.UpdateStep(9, 0.5) },
			expErr: model.ErrUnknownAction,
		},
		"Updating the root should fail": {
			update: func(r *registry.Registry) error { return r.UpdateStep(model.RootID, 0.5) },
			expErr: model.ErrUnknownAction,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			r := newRegistry(t, insert{id: 1, parent: 0, text: "a"})
			err := test.update(r)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			p, err := r.Progress(1)
			require.NoError(err)
			assert.InDelta(test.expProgress, p, 1e-9)
		})
	}
}

func TestRegistryUpdateStepRatioEquivalence(t *testing.T) {
	cases := [][2]float64{{0, 1}, {1, 3}, {2, 3}, {5, 5}, {7, 10}, {1, 1000}}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%v/%v", c[0], c[1]), func(t *testing.T) {
			require := require.New(t)

			r := newRegistry(t, insert{id: 1, parent: 0, text: "a"}, insert{id: 2, parent: 0, text: "b"})
			require.NoError(r.UpdateStepRatio(1, c[0], c[1]))
			require.NoError(r.UpdateStep(2, c[0]/c[1]))

			p1, _ := r.Progress(1)
			p2, _ := r.Progress(2)
			require.Equal(p2, p1)
		})
	}
}

func TestRegistryMutationsNotify(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	n := &countNotifier{}
	r, err := registry.New(registry.Config{Notifier: n})
	require.NoError(err)

	require.NoError(r.Insert(1, 0, 0, "a"))
	require.NoError(r.BeginStep(1))
	require.NoError(r.UpdateStep(1, 0.5))
	require.NoError(r.CompleteStep(1))
	assert.Equal(4, n.count())

	// Failed mutations don't notify.
	assert.Error(r.BeginStep(1))
	assert.Error(r.Insert(1, 0, 0, "a"))
	assert.Equal(4, n.count())
}

func TestRegistryAdvance(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := newRegistry(t,
		insert{id: 1, parent: 0, text: "group"},
		insert{id: 10, parent: 1, sortOrder: 0, text: "load files"},
		insert{id: 11, parent: 1, sortOrder: 1, text: "process data"},
		insert{id: 12, parent: 1, sortOrder: 2, text: "prepare output"},
	)

	next, err := r.Advance(1)
	require.NoError(err)
	assert.Equal(model.ActionID(10), next)

	next, err = r.Advance(1)
	require.NoError(err)
	assert.Equal(model.ActionID(11), next)

	st, _ := r.Status(10)
	assert.Equal(model.ActionStatusComplete, st)
	st, _ = r.Status(11)
	assert.Equal(model.ActionStatusActive, st)
	st, _ = r.Status(12)
	assert.Equal(model.ActionStatusPending, st)

	next, err = r.Advance(1)
	require.NoError(err)
	assert.Equal(model.ActionID(12), next)

	// Last call completes the last step and reports there is nothing left.
	_, err = r.Advance(1)
	assert.ErrorIs(err, model.ErrNotFound)
	st, _ = r.Status(12)
	assert.Equal(model.ActionStatusComplete, st)

	_, err = r.Advance(99)
	assert.ErrorIs(err, model.ErrUnknownAction)
}

func TestRegistrySnapshot(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := newRegistry(t,
		insert{id: 2, parent: 0, sortOrder: 1, text: "B"},
		insert{id: 1, parent: 0, sortOrder: 0, text: "A"},
		insert{id: 3, parent: 1, sortOrder: 0, text: "C"},
	)
	require.NoError(r.BeginStep(3))
	require.NoError(r.UpdateStep(3, 0.5))

	tree := r.Snapshot()
	assert.Equal(3, r.Len())
	assert.Equal([]model.Action{
		{ID: 1, ParentID: 0, SortOrder: 0, Text: "A", Status: model.ActionStatusPending, Depth: 1},
		{ID: 3, ParentID: 1, SortOrder: 0, Text: "C", Status: model.ActionStatusActive, Progress: 0.5, Depth: 2},
		{ID: 2, ParentID: 0, SortOrder: 1, Text: "B", Status: model.ActionStatusPending, Depth: 1},
	}, tree.Actions)

	a, err := r.Get(3)
	require.NoError(err)
	assert.Equal(2, a.Depth)

	_, err = r.Get(model.RootID)
	assert.ErrorIs(err, model.ErrUnknownAction)
	_, err = r.Children(99)
	assert.ErrorIs(err, model.ErrUnknownAction)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	r := newRegistry(t)

	const groups = 8
	const leaves = 25

	var wg sync.WaitGroup
	for g := 1; g <= groups; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()

			groupID := model.ActionID(g * 1000)
			if err := r.Insert(groupID, 0, g, fmt.Sprintf("group %d", g)); err != nil {
				t.Error(err)
				return
			}
			for l := 1; l <= leaves; l++ {
				id := groupID + model.ActionID(l)
				if err := r.Insert(id, groupID, l, "leaf"); err != nil {
					t.Error(err)
					return
				}
				_ = r.BeginStep(id)
				for u := 1; u <= 4; u++ {
					_ = r.UpdateStepRatio(id, float64(u), 4)
				}
				_ = r.CompleteStep(id)
			}
		}(g)
	}

	// Concurrent readers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = r.Snapshot()
			r.View(func(t registry.Tree) { _ = t.PostOrder() })
		}
	}()

	wg.Wait()
	<-done

	require.Equal(groups*(leaves+1), r.Len())
	roots, err := r.Children(0)
	require.NoError(err)
	assert.Len(roots, groups)
	for _, a := range r.Snapshot().Actions {
		if a.Depth == 2 {
			assert.Equal(model.ActionStatusComplete, a.Status)
			assert.Equal(1.0, a.Progress)
		}
	}
}
