package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Codeshift/internal/domain"
)

const defaultListLimit = 50

// RunRepo — история запусков.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create сохраняет только что начатый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, kind, mode, status, total, succeeded, failed, error, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Kind,
		nullString(string(run.Mode)),
		run.Status,
		run.Total,
		run.Succeeded,
		run.Failed,
		nullString(run.Error),
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish записывает итог run.
func (r *RunRepo) Finish(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE runs
		SET status = $2, succeeded = $3, failed = $4, error = $5, finished_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.Succeeded,
		run.Failed,
		nullString(run.Error),
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, kind, mode, status, total, succeeded, failed, error, started_at, finished_at
		FROM runs
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// RunFilter — параметры выборки runs.
type RunFilter struct {
	Kind   domain.RunKind
	Status domain.RunStatus
	Limit  int
	Offset int
}

// List возвращает runs, последние первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	query := `
		SELECT id, kind, mode, status, total, succeeded, failed, error, started_at, finished_at
		FROM runs
		WHERE ($1::text IS NULL OR kind = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Kind)),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanRun сканирует строку в Run. pgx.ErrNoRows возвращается как есть.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var mode, runError *string

	err := row.Scan(
		&run.ID,
		&run.Kind,
		&mode,
		&run.Status,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&runError,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if mode != nil {
		run.Mode = domain.ProcessingMode(*mode)
	}
	if runError != nil {
		run.Error = *runError
	}
	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
