package runremove

import (
	"context"
	"fmt"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/storage"
)

// ServiceConfig is the configuration for the run remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.RunRemove"})

	return nil
}

// Service removes stored runs.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new run remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the run remove request parameters.
type Request struct {
	IDs []string
}

// Run removes the runs. It stops on the first run that can't be removed and
// returns the IDs removed until then.
func (s *Service) Run(ctx context.Context, req Request) ([]string, error) {
	if len(req.IDs) == 0 {
		return nil, fmt.Errorf("at least one run id is required: %w", model.ErrNotValid)
	}

	removed := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if err := s.repo.DeleteRun(ctx, id); err != nil {
			return removed, fmt.Errorf("could not remove run %s: %w", id, err)
		}
		removed = append(removed, id)
		s.logger.Infof("removed run: %s", id)
	}

	return removed, nil
}
