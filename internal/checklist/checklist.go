package checklist

import (
	"fmt"
	"sync"

	"github.com/slok/progtree/internal/model"
)

// Item is a single requirement of a checklist.
type Item struct {
	ID   string
	Text string
	Met  bool
	// Optional requirements only warn when they are not met.
	Optional bool
}

// Checklist is an ordered list of requirements that are met or not. It's safe
// for concurrent use.
type Checklist struct {
	mu    sync.Mutex
	items []Item
	index map[string]int
}

// New returns an empty checklist.
func New() *Checklist {
	return &Checklist{index: map[string]int{}}
}

// Insert adds a new unmet requirement at the end of the checklist.
func (c *Checklist) Insert(id, text string) error {
	return c.insert(Item{ID: id, Text: text})
}

// InsertOptional adds a new unmet optional requirement at the end of the checklist.
func (c *Checklist) InsertOptional(id, text string) error {
	return c.insert(Item{ID: id, Text: text, Optional: true})
}

func (c *Checklist) insert(it Item) error {
	if it.ID == "" {
		return fmt.Errorf("requirement id is required: %w", model.ErrNotValid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[it.ID]; ok {
		return fmt.Errorf("requirement %q: %w", it.ID, model.ErrAlreadyExists)
	}
	c.index[it.ID] = len(c.items)
	c.items = append(c.items, it)

	return nil
}

// SetMet changes the met state of a requirement.
func (c *Checklist) SetMet(id string, met bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("requirement %q: %w", id, model.ErrNotFound)
	}
	c.items[i].Met = met

	return nil
}

// SetText replaces the text of a requirement.
func (c *Checklist) SetText(id, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("requirement %q: %w", id, model.ErrNotFound)
	}
	c.items[i].Text = text

	return nil
}

// Items returns a copy of the requirements in insertion order.
func (c *Checklist) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// AllMet returns true when every required (non optional) requirement is met.
func (c *Checklist) AllMet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if !it.Met && !it.Optional {
			return false
		}
	}
	return true
}

// Results converts the checklist into check results.
func (c *Checklist) Results() []model.CheckResult {
	items := c.Items()
	res := make([]model.CheckResult, 0, len(items))
	for _, it := range items {
		res = append(res, model.CheckResult{
			ID:      it.ID,
			Message: it.Text,
			Status:  model.RequirementStatus(it.Met, it.Optional),
		})
	}
	return res
}
