package render_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/render"
)

// stepSource returns the trees in order, repeating the last one.
type stepSource struct {
	mu    sync.Mutex
	trees []model.ActionTree
	calls int
}

func (s *stepSource) Snapshot() model.ActionTree {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := min(s.calls, len(s.trees)-1)
	s.calls++
	return s.trees[i]
}

func treeFixture(buildStatus model.ActionStatus, buildProgress float64) model.ActionTree {
	return model.ActionTree{
		Overall: buildProgress,
		Actions: []model.Action{
			{ID: 1, Text: "Build", Status: buildStatus, Progress: buildProgress, Depth: 1},
			{ID: 2, ParentID: 1, Text: "Compile", Status: buildStatus, Progress: buildProgress, Depth: 2},
		},
	}
}

func TestNewRenderer(t *testing.T) {
	tests := map[string]struct {
		config  render.RendererConfig
		expMode render.Mode
		expErr  bool
	}{
		"Missing source should fail.": {
			config: render.RendererConfig{},
			expErr: true,
		},
		"Unknown mode should fail.": {
			config: render.RendererConfig{Source: &stepSource{}, Mode: "fancy"},
			expErr: true,
		},
		"Auto mode on a non terminal output should use text.": {
			config:  render.RendererConfig{Source: &stepSource{}, Out: &bytes.Buffer{}},
			expMode: render.ModeText,
		},
		"Explicit bars mode should be respected.": {
			config:  render.RendererConfig{Source: &stepSource{}, Out: &bytes.Buffer{}, Mode: render.ModeBars},
			expMode: render.ModeBars,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := render.NewRenderer(test.config)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expMode, r.Mode())
		})
	}
}

func TestRendererTextMode(t *testing.T) {
	src := &stepSource{trees: []model.ActionTree{
		treeFixture(model.ActionStatusPending, 0),
		treeFixture(model.ActionStatusPending, 0),
		treeFixture(model.ActionStatusActive, 0.5),
		treeFixture(model.ActionStatusComplete, 1),
	}}

	var out bytes.Buffer
	r, err := render.NewRenderer(render.RendererConfig{
		Source:   src,
		Out:      &out,
		Mode:     render.ModeText,
		Interval: time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls > len(src.trees)
	}, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	exp := []string{
		"Build: pending 0%",
		"  Compile: pending 0%",
		"Build: active 50%",
		"  Compile: active 50%",
		"Build: complete 100%",
		"  Compile: complete 100%",
		"Overall: 100%",
	}
	assert.Equal(t, exp, strings.Split(strings.TrimSpace(out.String()), "\n"))
}

func TestRendererBarsMode(t *testing.T) {
	src := &stepSource{trees: []model.ActionTree{
		treeFixture(model.ActionStatusActive, 0.5),
		treeFixture(model.ActionStatusComplete, 1),
	}}

	var out bytes.Buffer
	r, err := render.NewRenderer(render.RendererConfig{
		Source:   src,
		Out:      &out,
		Mode:     render.ModeBars,
		Interval: time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls > 2
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("renderer didn't release the terminal")
	}
}
