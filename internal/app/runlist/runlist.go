package runlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/storage"
)

// ServiceConfig is the configuration for the run list service.
type ServiceConfig struct {
	Repository storage.RunRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.RunList"})

	return nil
}

// Service lists stored runs with optional filtering.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new run list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the run list request parameters.
type Request struct {
	// NameFilter only keeps the runs whose name contains it.
	NameFilter string
	// FailedOnly only keeps the runs that ended with an error.
	FailedOnly bool
	// Limit is the max number of runs returned, 0 returns all.
	Limit int
}

// Run lists the stored runs newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Run, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	filtered := make([]model.Run, 0, len(runs))
	for _, r := range runs {
		if req.NameFilter != "" && !strings.Contains(r.Name, req.NameFilter) {
			continue
		}
		if req.FailedOnly && r.Error == "" {
			continue
		}
		filtered = append(filtered, r)
	}

	if req.Limit > 0 && len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}

	s.logger.Debugf("found %d runs", len(filtered))
	return filtered, nil
}
