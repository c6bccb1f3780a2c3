package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/progtree/internal/app/runlist"
	"github.com/slok/progtree/internal/printer"
	"github.com/slok/progtree/internal/storage/sqlite"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	nameFilter string
	failedOnly bool
	limit      int
	format     string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List stored runs, newest first.")
	c.Cmd.Alias("ls")
	c.Cmd.Flag("name", "Only show runs whose name contains this text.").StringVar(&c.nameFilter)
	c.Cmd.Flag("failed", "Only show failed runs.").BoolVar(&c.failedOnly)
	c.Cmd.Flag("limit", "Max number of runs to show (0 shows all).").Default("0").IntVar(&c.limit)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := runlist.NewService(runlist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	runs, err := svc.Run(ctx, runlist.Request{
		NameFilter: c.nameFilter,
		FailedOnly: c.failedOnly,
		Limit:      c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}

	if err := printer.New(c.format, c.rootCmd.Stdout).PrintRunList(runs); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
