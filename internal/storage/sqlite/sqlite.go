package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/progtree/internal/log"
	"github.com/slok/progtree/internal/model"
	"github.com/slok/progtree/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.RunRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateRun stores a run and its actions in a single transaction.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, overall, error, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Name, run.Overall, run.Error, run.CreatedAt.Unix(), run.FinishedAt.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_actions (run_id, position, action_id, parent_id, sort_order, depth, text, status, progress, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, a := range run.Actions {
		_, err := stmt.ExecContext(ctx, run.ID, i, a.ID, a.ParentID, a.SortOrder, a.Depth, a.Text, a.Status, a.Progress, a.Detail)
		if err != nil {
			return fmt.Errorf("could not insert action %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s (%d actions)", run.ID, len(run.Actions))
	return nil
}

// GetRun retrieves a run by ID with its actions in tree order.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := `
		SELECT id, name, overall, error, created_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := r.scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query run: %w", err)
	}

	actions, err := r.listActions(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Actions = actions

	return &run, nil
}

// ListRuns returns all runs newest first, without actions.
func (r *Repository) ListRuns(ctx context.Context) ([]model.Run, error) {
	query := `
		SELECT id, name, overall, error, created_at, finished_at
		FROM runs
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// DeleteRun deletes a run and its actions.
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted run from repository: %s", id)
	return nil
}

func (r *Repository) listActions(ctx context.Context, runID string) ([]model.Action, error) {
	query := `
		SELECT action_id, parent_id, sort_order, depth, text, status, progress, detail
		FROM run_actions
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query actions: %w", err)
	}
	defer rows.Close()

	var actions []model.Action
	for rows.Next() {
		var a model.Action
		err := rows.Scan(&a.ID, &a.ParentID, &a.SortOrder, &a.Depth, &a.Text, &a.Status, &a.Progress, &a.Detail)
		if err != nil {
			return nil, fmt.Errorf("could not scan action: %w", err)
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return actions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanRun(s scanner) (model.Run, error) {
	var run model.Run
	var createdAt, finishedAt int64

	err := s.Scan(&run.ID, &run.Name, &run.Overall, &run.Error, &createdAt, &finishedAt)
	if err != nil {
		return model.Run{}, err
	}

	run.CreatedAt = timeFromUnix(createdAt)
	run.FinishedAt = timeFromUnix(finishedAt)
	return run, nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
