// Package db provides PostgreSQL persistence for check run records.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storecheckhq/storecheck/internal/faults"
	"github.com/storecheckhq/storecheck/internal/types"
)

// ErrAlreadyTerminal is returned when a terminal write targets a run that
// is not in_progress. The first terminal write wins; later ones fail.
var ErrAlreadyTerminal = fmt.Errorf("check run is not in progress")

// checkRunsDDL creates the single table this package owns.
const checkRunsDDL = `
CREATE TABLE IF NOT EXISTS check_runs (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner         TEXT NOT NULL,
    repo          TEXT NOT NULL,
    ref           TEXT NOT NULL DEFAULT '',
    check_type    TEXT NOT NULL,
    platform      TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'in_progress',
    summary       JSONB,
    issues        JSONB,
    error         JSONB,
    retryable     BOOLEAN,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_check_runs_created_at ON check_runs (created_at DESC);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the check_runs table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, checkRunsDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateCheckRun opens a new run in the in_progress state and returns its ID
func (db *DB) CreateCheckRun(ctx context.Context, input *CheckRunInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO check_runs (owner, repo, ref, check_type, platform, status)
		 VALUES ($1, $2, $3, $4, $5, 'in_progress')
		 RETURNING id`,
		input.Owner, input.Repo, input.Ref, input.CheckType, string(input.Platform),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create check run: %w", err)
	}
	return id, nil
}

// CompleteCheckRun records the final issue list and marks the run completed.
// The status guard makes the terminal transition exclusive: a run already
// completed or failed is left untouched and ErrAlreadyTerminal is returned.
func (db *DB) CompleteCheckRun(ctx context.Context, runID uuid.UUID, issues []types.ComplianceIssue) error {
	summary := types.Summarize(issues)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE check_runs
		 SET status = 'completed', summary = $1, issues = $2, completed_at = NOW()
		 WHERE id = $3 AND status = 'in_progress'`,
		summaryJSON, issuesJSON, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete check run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyTerminal
	}
	return nil
}

// FailCheckRun records a classified failure and marks the run failed, under
// the same exclusive terminal guard as CompleteCheckRun.
func (db *DB) FailCheckRun(ctx context.Context, runID uuid.UUID, cerr *faults.ComplianceError, retryable bool) error {
	errJSON, err := json.Marshal(cerr)
	if err != nil {
		return fmt.Errorf("failed to marshal error: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE check_runs
		 SET status = 'failed', error = $1, retryable = $2, completed_at = NOW()
		 WHERE id = $3 AND status = 'in_progress'`,
		errJSON, retryable, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to fail check run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyTerminal
	}
	return nil
}

// GetCheckRun retrieves a check run by ID. Returns nil when absent.
func (db *DB) GetCheckRun(ctx context.Context, runID uuid.UUID) (*CheckRun, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, owner, repo, ref, check_type, platform, status,
		        summary, issues, error, retryable, created_at, completed_at
		 FROM check_runs WHERE id = $1`,
		runID,
	)
	run, err := scanCheckRun(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get check run: %w", err)
	}
	return run, nil
}

// ListCheckRuns retrieves recent check runs, newest first
func (db *DB) ListCheckRuns(ctx context.Context, limit int) ([]CheckRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, owner, repo, ref, check_type, platform, status,
		        summary, issues, error, retryable, created_at, completed_at
		 FROM check_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	defer rows.Close()

	var runs []CheckRun
	for rows.Next() {
		run, err := scanCheckRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanCheckRun decodes one check_runs row, unmarshalling the JSONB columns.
func scanCheckRun(row pgx.Row) (*CheckRun, error) {
	var run CheckRun
	var platform string
	var summaryJSON, issuesJSON, errJSON []byte

	err := row.Scan(&run.ID, &run.Owner, &run.Repo, &run.Ref, &run.CheckType,
		&platform, &run.Status, &summaryJSON, &issuesJSON, &errJSON,
		&run.Retryable, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	run.Platform = types.Platform(platform)

	if summaryJSON != nil {
		var summary types.Summary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		run.Summary = &summary
	}
	if issuesJSON != nil {
		if err := json.Unmarshal(issuesJSON, &run.Issues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
		}
	}
	if errJSON != nil {
		var cerr faults.ComplianceError
		if err := json.Unmarshal(errJSON, &cerr); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error: %w", err)
		}
		run.Error = &cerr
	}
	return &run, nil
}
