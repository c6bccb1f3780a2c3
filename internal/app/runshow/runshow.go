package runshow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/storage"
)

// ServiceConfig is the configuration for the run show service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.RunShow"})

	return nil
}

// Service gets a stored run with its action tree.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new run show service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the run show request parameters.
type Request struct {
	// ID is the run ID or an unambiguous prefix of it.
	ID string
}

// Run returns the run.
func (s *Service) Run(ctx context.Context, req Request) (*model.Run, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	run, err := s.repo.GetRun(ctx, req.ID)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	// Fallback to ID prefixes, ULIDs are long to type.
	id, err := s.resolvePrefix(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("run prefix %q resolved to %s", req.ID, id)

	run, err = s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}

func (s *Service) resolvePrefix(ctx context.Context, prefix string) (string, error) {
	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		return "", fmt.Errorf("could not list runs: %w", err)
	}

	var matches []string
	for _, r := range runs {
		if strings.HasPrefix(r.ID, strings.ToUpper(prefix)) {
			matches = append(matches, r.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("run not found: %s: %w", prefix, model.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run prefix %q matches %d runs: %w", prefix, len(matches), model.ErrNotValid)
	}
}
