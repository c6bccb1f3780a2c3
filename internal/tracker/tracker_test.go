package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/tracker"
)

func TestTrackerBackgroundAggregation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tr, err := tracker.New(tracker.Config{Period: time.Millisecond})
	require.NoError(err)
	tr.Start(context.Background())
	tr.Start(context.Background())

	require.NoError(tr.Insert(1, 0, 0, "A"))
	require.NoError(tr.Insert(2, 0, 1, "B"))
	require.NoError(tr.Insert(3, 1, 0, "C"))
	require.NoError(tr.BeginStep(3))
	require.NoError(tr.UpdateStep(3, 0.5))

	assert.Eventually(func() bool {
		p, _ := tr.Progress(1)
		return p == 0.5
	}, time.Second, time.Millisecond)

	require.NoError(tr.CompleteStep(3))
	require.NoError(tr.Close())

	tree := tr.Tree()
	assert.Equal(0.5, tree.Overall)
	a, err := tr.Get(1)
	require.NoError(err)
	assert.Equal(1.0, a.Progress)
}

func TestTrackerFlushWithoutStart(t *testing.T) {
	require := require.New(t)

	tr, err := tracker.New(tracker.Config{})
	require.NoError(err)

	require.NoError(tr.Insert(1, 0, 0, "A"))
	require.NoError(tr.Insert(2, 1, 0, "B"))
	require.NoError(tr.UpdateStepRatio(2, 1, 4))
	tr.Flush()

	p, err := tr.Progress(model.RootID)
	require.NoError(err)
	require.Equal(0.25, p)
	require.NoError(tr.Close())
}

func TestTrackerInvalidConfig(t *testing.T) {
	_, err := tracker.New(tracker.Config{Period: -time.Second})
	assert.Error(t, err)
}
