// Package render draws a live view of an action tree on a terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/printer"
)

// barTotal is the resolution of every bar, progress ratios are scaled to it.
const barTotal = 1000

// Mode selects how the tree is drawn.
type Mode string

const (
	// ModeAuto uses bars when the output is a terminal and text otherwise.
	ModeAuto Mode = "auto"
	// ModeBars draws one live bar per action.
	ModeBars Mode = "bars"
	// ModeText prints a line every time an action changes its status.
	ModeText Mode = "text"
)

// TreeSource returns point in time copies of an action tree.
type TreeSource interface {
	Snapshot() model.ActionTree
}

// RendererConfig is the configuration for the renderer.
type RendererConfig struct {
	Source TreeSource
	// Out is where the tree is drawn, by default stderr so stdout is kept for printers.
	Out      io.Writer
	Mode     Mode
	Interval time.Duration
	Width    int
	Logger   log.Logger
}

func (c *RendererConfig) defaults() error {
	if c.Source == nil {
		return fmt.Errorf("source is required")
	}
	if c.Out == nil {
		c.Out = os.Stderr
	}
	if c.Mode == "" {
		c.Mode = ModeAuto
	}
	if c.Interval <= 0 {
		c.Interval = 150 * time.Millisecond
	}
	if c.Width <= 0 {
		c.Width = 40
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "render.Renderer"})

	switch c.Mode {
	case ModeAuto:
		c.Mode = ModeText
		if isTerminal(c.Out) {
			c.Mode = ModeBars
		}
	case ModeBars, ModeText:
	default:
		return fmt.Errorf("unknown render mode %q", c.Mode)
	}

	return nil
}

// Renderer polls a tree source and draws it until its context is done.
type Renderer struct {
	source   TreeSource
	out      io.Writer
	mode     Mode
	interval time.Duration
	width    int
	logger   log.Logger

	progress *mpb.Progress
	overall  *barState
	bars     map[model.ActionID]*barState
	statuses map[model.ActionID]model.ActionStatus
}

// NewRenderer returns a new renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Renderer{
		source:   cfg.Source,
		out:      cfg.Out,
		mode:     cfg.Mode,
		interval: cfg.Interval,
		width:    cfg.Width,
		logger:   cfg.Logger,
		bars:     map[model.ActionID]*barState{},
		statuses: map[model.ActionID]model.ActionStatus{},
	}, nil
}

// Mode returns the mode the renderer draws with.
func (r *Renderer) Mode() Mode { return r.mode }

// Run draws the tree every interval until ctx is done, then draws it one last
// time and releases the terminal.
func (r *Renderer) Run(ctx context.Context) error {
	if r.mode == ModeBars {
		r.progress = mpb.New(
			mpb.WithOutput(r.out),
			mpb.WithRefreshRate(r.interval),
			mpb.WithWidth(r.width),
		)
	}

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		r.draw(r.source.Snapshot())

		select {
		case <-ctx.Done():
			r.finish(r.source.Snapshot())
			return nil
		case <-t.C:
		}
	}
}

func (r *Renderer) draw(tree model.ActionTree) {
	switch r.mode {
	case ModeBars:
		r.drawBars(tree)
	default:
		r.drawText(tree)
	}
}

func (r *Renderer) finish(tree model.ActionTree) {
	r.draw(tree)

	if r.mode != ModeBars {
		fmt.Fprintf(r.out, "Overall: %s\n", printer.FormatPercent(tree.Overall))
		return
	}

	// Bars not completed are aborted so the progress container can be released,
	// they are kept on screen with their last state.
	if r.overall != nil && !r.overall.bar.Completed() {
		r.overall.bar.Abort(false)
	}
	for _, b := range r.bars {
		if !b.bar.Completed() {
			b.bar.Abort(false)
		}
	}
	r.progress.Wait()
	r.logger.Debugf("Renderer finished")
}

func (r *Renderer) drawText(tree model.ActionTree) {
	for _, a := range tree.Actions {
		prev, ok := r.statuses[a.ID]
		if ok && prev == a.Status {
			continue
		}
		r.statuses[a.ID] = a.Status

		fmt.Fprintf(r.out, "%s%s: %s %s\n", indent(a.Depth), a.Text, a.Status, printer.FormatPercent(a.Progress))
	}
}

func (r *Renderer) drawBars(tree model.ActionTree) {
	if r.overall == nil {
		r.overall = r.newBar(0, "Overall")
	}
	pending, active, complete := tree.CountByStatus()
	r.overall.update(tree.Overall, model.ActionStatus(fmt.Sprintf("%d/%d", complete, pending+active+complete)), complete > 0 && pending+active == 0)

	for i, a := range tree.Actions {
		b, ok := r.bars[a.ID]
		if !ok {
			b = r.newBar(i+1, indent(a.Depth)+a.Text)
			r.bars[a.ID] = b
		}
		b.update(a.Progress, a.Status, a.Status == model.ActionStatusComplete)
		b.setDetail(a.Detail)
	}
}

func (r *Renderer) newBar(priority int, name string) *barState {
	b := &barState{}
	b.bar = r.progress.New(barTotal,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.BarPriority(priority),
		mpb.PrependDecorators(
			decor.Name(name, decor.WCSyncSpaceR),
			decor.Any(func(decor.Statistics) string { return b.getStatus() }, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Any(func(decor.Statistics) string { return b.getDetail() }, decor.WCSyncSpace),
		),
	)
	return b
}

type barState struct {
	bar *mpb.Bar

	mu     sync.Mutex
	status string
	detail string
}

// update moves the bar to the progress ratio. Bars only reach their total when
// complete, an active action at 100% keeps its bar open.
func (b *barState) update(progress float64, status model.ActionStatus, complete bool) {
	b.mu.Lock()
	b.status = string(status)
	b.mu.Unlock()

	if b.bar.Completed() {
		return
	}

	current := int64(math.Round(progress * barTotal))
	if complete {
		current = barTotal
	} else if current >= barTotal {
		current = barTotal - 1
	}
	b.bar.SetCurrent(current)
}

func (b *barState) setDetail(d string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detail = d
}

func (b *barState) getStatus() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *barState) getDetail() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detail
}

func indent(depth int) string {
	return strings.Repeat("  ", max(depth-1, 0))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
