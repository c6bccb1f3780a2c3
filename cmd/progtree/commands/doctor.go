package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"golang.org/x/term"

	"github.com/slok/progtree/internal/app/doctor"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/printer"
	"github.com/slok/progtree/internal/storage"
	"github.com/slok/progtree/internal/storage/io"
	"github.com/slok/progtree/internal/storage/sqlite"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	planFile string
	format   string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks.")
	c.Cmd.Flag("plan", "Plan YAML file to validate.").StringVar(&c.planFile)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var planPath string
	if c.planFile != "" {
		p, err := rootFSPath(c.planFile)
		if err != nil {
			return err
		}
		planPath = p
	}

	svc, err := doctor.NewService(doctor.ServiceConfig{
		DataDir: filepath.Dir(c.rootCmd.DBPath),
		OpenRepository: func(ctx context.Context) (storage.RunRepository, func() error, error) {
			repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
				DBPath: c.rootCmd.DBPath,
				Logger: logger,
			})
			if err != nil {
				return nil, nil, err
			}
			return repo, repo.Close, nil
		},
		PlanRepository: io.NewPlanYAMLRepository(os.DirFS("/")),
		IsTerminal:     func() bool { return isTerminal(c.rootCmd.Stderr) },
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Run(ctx, doctor.Request{PlanPath: planPath})
	if err != nil {
		return fmt.Errorf("could not run checks: %w", err)
	}

	if err := printer.New(c.format, c.rootCmd.Stdout).PrintChecks(results); err != nil {
		return fmt.Errorf("could not print checks: %w", err)
	}

	if summary := model.SummarizeChecks(results); summary.Failed() {
		return fmt.Errorf("checks failed with %d error(s)", summary.Errors)
	}

	return nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
