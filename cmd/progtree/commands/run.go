package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/progtree/internal/app/execute"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/printer"
	"github.com/slok/progtree/internal/render"
	"github.com/slok/progtree/internal/storage"
	"github.com/slok/progtree/internal/storage/io"
	"github.com/slok/progtree/internal/storage/memory"
	"github.com/slok/progtree/internal/storage/sqlite"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	planFile string
	name     string
	period   time.Duration
	workers  int
	noBars   bool
	noSave   bool
	format   string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Execute a plan tracking its progress.")
	c.Cmd.Arg("plan", "Path to the plan YAML file.").Required().StringVar(&c.planFile)
	c.Cmd.Flag("name", "Name of the run (defaults to the plan name).").StringVar(&c.name)
	c.Cmd.Flag("period", "Minimum time between progress aggregations.").Default("1s").DurationVar(&c.period)
	c.Cmd.Flag("workers", "Max steps of a parallel group running at the same time.").Default("4").IntVar(&c.workers)
	c.Cmd.Flag("no-bars", "Print status changes instead of live progress bars.").BoolVar(&c.noBars)
	c.Cmd.Flag("no-save", "Do not store the run in the database.").BoolVar(&c.noSave)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	planPath, err := rootFSPath(c.planFile)
	if err != nil {
		return err
	}
	plan, err := io.NewPlanYAMLRepository(os.DirFS("/")).GetPlan(ctx, planPath)
	if err != nil {
		return fmt.Errorf("could not load plan: %w", err)
	}

	var repo storage.RunRepository
	if c.noSave {
		repo, err = memory.NewRepository(memory.RepositoryConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
	} else {
		sqliteRepo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	}

	svc, err := execute.NewService(execute.ServiceConfig{
		Repository: repo,
		Period:     c.period,
		Workers:    c.workers,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	exec, err := svc.Prepare(execute.Request{Plan: plan, Name: c.name})
	if err != nil {
		return fmt.Errorf("could not prepare run: %w", err)
	}

	mode := render.ModeAuto
	if c.noBars {
		mode = render.ModeText
	}
	renderer, err := render.NewRenderer(render.RendererConfig{
		Source: exec,
		Out:    c.rootCmd.Stderr,
		Mode:   mode,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}

	// The renderer draws until the execution ends.
	var (
		g      run.Group
		result *model.Run
		runErr error
	)
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				result, runErr = exec.Run(ctx)
				return nil
			},
			func(_ error) { cancel() },
		)
	}
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error { return renderer.Run(ctx) },
			func(_ error) { cancel() },
		)
	}
	_ = g.Run()

	if result == nil {
		return runErr
	}

	p := printer.New(c.format, c.rootCmd.Stdout)
	if err := p.PrintRun(*result); err != nil {
		return fmt.Errorf("could not print run: %w", err)
	}

	return runErr
}
