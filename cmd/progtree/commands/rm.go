package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/progtree/internal/app/runremove"
	"github.com/slok/progtree/internal/printer"
	"github.com/slok/progtree/internal/storage/sqlite"
)

type RemoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ids []string
}

// NewRemoveCommand returns the remove command.
func NewRemoveCommand(rootCmd *RootCommand, app *kingpin.Application) *RemoveCommand {
	c := &RemoveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Remove stored runs.")
	c.Cmd.Arg("ids", "Run IDs.").Required().StringsVar(&c.ids)

	return c
}

func (c RemoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c RemoveCommand) Run(ctx context.Context) error {
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

	svc, err := runremove.NewService(runremove.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	removed, err := svc.Run(ctx, runremove.Request{IDs: c.ids})

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	for _, id := range removed {
		_ = p.PrintMessage(fmt.Sprintf("Removed run %s", id))
	}

	if err != nil {
		return fmt.Errorf("could not remove runs: %w", err)
	}

	return nil
}
