package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/slok/progtree/internal/checklist"
	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/storage"
)

// Check IDs.
const (
	CheckDataDir  = "data_dir"
	CheckDatabase = "database"
	CheckPlan     = "plan"
	CheckTerminal = "terminal"
)

// OpenRepositoryFunc opens the run repository, the returned func releases it.
type OpenRepositoryFunc func(ctx context.Context) (storage.RunRepository, func() error, error)

// ServiceConfig is the configuration for the doctor service.
type ServiceConfig struct {
	DataDir        string
	OpenRepository OpenRepositoryFunc
	PlanRepository storage.PlanRepository
	// IsTerminal returns true when live progress bars can be drawn.
	IsTerminal func() bool
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.OpenRepository == nil {
		return fmt.Errorf("open repository is required")
	}
	if c.PlanRepository == nil {
		return fmt.Errorf("plan repository is required")
	}
	if c.IsTerminal == nil {
		c.IsTerminal = func() bool { return false }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})
	return nil
}

// Service runs preflight checks of the environment progtree runs in.
type Service struct {
	dataDir    string
	openRepo   OpenRepositoryFunc
	planRepo   storage.PlanRepository
	isTerminal func() bool
	logger     log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		dataDir:    cfg.DataDir,
		openRepo:   cfg.OpenRepository,
		planRepo:   cfg.PlanRepository,
		isTerminal: cfg.IsTerminal,
		logger:     cfg.Logger,
	}, nil
}

// Request represents the doctor request parameters.
type Request struct {
	// PlanPath is an optional plan to validate.
	PlanPath string
}

// Run runs every check and returns their results in order.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	cl := checklist.New()

	checks := []check{
		{id: CheckDataDir, text: "data directory is writable", run: s.checkDataDir},
		{id: CheckDatabase, text: "run database is usable", run: s.checkDatabase},
	}
	if req.PlanPath != "" {
		checks = append(checks, check{id: CheckPlan, text: "plan is valid", run: func(ctx context.Context) (string, error) {
			return s.checkPlan(ctx, req.PlanPath)
		}})
	}
	checks = append(checks, check{id: CheckTerminal, text: "output is a terminal", optional: true, run: s.checkTerminal})

	for _, c := range checks {
		var err error
		if c.optional {
			err = cl.InsertOptional(c.id, c.text)
		} else {
			err = cl.Insert(c.id, c.text)
		}
		if err != nil {
			return nil, fmt.Errorf("could not register check %s: %w", c.id, err)
		}
	}

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg, err := c.run(ctx)
		if err != nil {
			s.logger.Debugf("check %s failed: %s", c.id, err)
			_ = cl.SetText(c.id, fmt.Sprintf("%s: %s", c.text, err))
			continue
		}
		if msg != "" {
			_ = cl.SetText(c.id, msg)
		}
		_ = cl.SetMet(c.id, true)
	}

	return cl.Results(), nil
}

type check struct {
	id       string
	text     string
	optional bool
	// run returns the message of a passed check.
	run func(ctx context.Context) (string, error)
}

func (s *Service) checkDataDir(_ context.Context) (string, error) {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return "", fmt.Errorf("could not create %s: %w", s.dataDir, err)
	}

	f, err := os.CreateTemp(s.dataDir, ".doctor-*")
	if err != nil {
		return "", fmt.Errorf("could not write in %s: %w", s.dataDir, err)
	}
	f.Close()
	_ = os.Remove(f.Name())

	return fmt.Sprintf("data directory %s is writable", s.dataDir), nil
}

func (s *Service) checkDatabase(ctx context.Context) (string, error) {
	repo, closeRepo, err := s.openRepo(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			s.logger.Warningf("could not close repository: %s", err)
		}
	}()

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("run database is usable (%d runs stored)", len(runs)), nil
}

func (s *Service) checkPlan(ctx context.Context, path string) (string, error) {
	plan, err := s.planRepo.GetPlan(ctx, path)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("plan %q is valid (%d steps)", plan.Name, plan.StepCount()), nil
}

func (s *Service) checkTerminal(_ context.Context) (string, error) {
	if !s.isTerminal() {
		return "", fmt.Errorf("live progress bars are disabled")
	}
	return "output is a terminal, live progress bars enabled", nil
}
