package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/registry"
)

func TestTreePostOrder(t *testing.T) {
	assert := assert.New(t)

	r := newRegistry(t,
		insert{id: 1, parent: 0, sortOrder: 0, text: "A"},
		insert{id: 2, parent: 0, sortOrder: 1, text: "B"},
		insert{id: 3, parent: 1, sortOrder: 0, text: "C"},
		insert{id: 4, parent: 1, sortOrder: 1, text: "D"},
	)

	r.View(func(tr registry.Tree) {
		assert.Equal([]model.ActionID{3, 4, 1, 2, 0}, tr.PostOrder())
		assert.Equal([]model.ActionID{3, 4}, tr.Children(1))

		parent, ok := tr.Parent(3)
		assert.True(ok)
		assert.Equal(model.ActionID(1), parent)
		_, ok = tr.Parent(model.RootID)
		assert.False(ok)
	})
}

func TestTreeRecalcFlags(t *testing.T) {
	assert := assert.New(t)

	r := newRegistry(t, insert{id: 1, parent: 0, text: "A"})

	r.View(func(tr registry.Tree) {
		// Insertion flags the new action.
		assert.True(tr.TakeRecalc(1))
		assert.False(tr.TakeRecalc(1))

		tr.MarkRecalc(1)
		assert.True(tr.TakeRecalc(1))

		assert.True(tr.SetAggregate(1, 0.4))
		assert.False(tr.SetAggregate(1, 0.4))
		assert.Equal(0.4, tr.Progress(1))
	})

	_ = r.UpdateStep(1, 0.9)
	r.View(func(tr registry.Tree) {
		assert.True(tr.TakeRecalc(1))
	})
}
