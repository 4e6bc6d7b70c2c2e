package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Codeshift/internal/domain"
)

// FileRepo — снимки файлов реестра после запусков.
type FileRepo struct {
	pool *pgxpool.Pool
}

// NewFileRepo создаёт новый FileRepo.
func NewFileRepo(pool *pgxpool.Pool) *FileRepo {
	return &FileRepo{pool: pool}
}

const upsertSnapshot = `
	INSERT INTO file_snapshots
		(file_name, old_code, new_code, advice, error, unit_test_code, dockerfile, yaml, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (file_name) DO UPDATE SET
		old_code       = EXCLUDED.old_code,
		new_code       = EXCLUDED.new_code,
		advice         = EXCLUDED.advice,
		error          = EXCLUDED.error,
		unit_test_code = EXCLUDED.unit_test_code,
		dockerfile     = EXCLUDED.dockerfile,
		yaml           = EXCLUDED.yaml,
		updated_at     = now()
`

// SaveAll сохраняет записи одним batch в транзакции.
func (r *FileRepo) SaveAll(ctx context.Context, files []domain.FileRecord) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, f := range files {
		batch.Queue(upsertSnapshot,
			f.FileName,
			f.OldCode,
			f.NewCode,
			f.Advice,
			nullString(f.Error),
			nullString(f.UnitTestCode),
			nullString(f.DockerfileContent),
			nullString(f.YAMLContent),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert snapshots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List возвращает сохранённые снимки в порядке имени.
func (r *FileRepo) List(ctx context.Context) ([]domain.FileRecord, error) {
	query := `
		SELECT file_name, old_code, new_code, advice, error, unit_test_code, dockerfile, yaml
		FROM file_snapshots
		ORDER BY file_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var files []domain.FileRecord
	for rows.Next() {
		var f domain.FileRecord
		var fileErr, unitTest, dockerfile, yaml *string

		if err := rows.Scan(
			&f.FileName,
			&f.OldCode,
			&f.NewCode,
			&f.Advice,
			&fileErr,
			&unitTest,
			&dockerfile,
			&yaml,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		f.Error = deref(fileErr)
		f.UnitTestCode = deref(unitTest)
		f.DockerfileContent = deref(dockerfile)
		f.YAMLContent = deref(yaml)
		files = append(files, f)
	}
	return files, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
