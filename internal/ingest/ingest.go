package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/engine"
)

// maxFileSize — максимальный размер одного файла.
const maxFileSize = 8 * 1024 * 1024

// Upload — один загружаемый файл.
type Upload struct {
	// Path — путь относительно корня загрузки, становится FileName.
	Path string

	// Open открывает содержимое файла.
	Open func() (io.ReadCloser, error)
}

// Dropped — загрузка, которую не удалось прочитать.
type Dropped struct {
	Path string
	Err  error
}

// Result — итог загрузки.
type Result struct {
	// Files — опубликованные записи в порядке загрузок.
	Files []domain.FileRecord

	// Dropped — загрузки, не попавшие в реестр.
	Dropped []Dropped
}

// Publisher — получатель готового списка (реестр).
type Publisher interface {
	SetAll(records []domain.FileRecord)
}

// Config — конфигурация Ingestor.
type Config struct {
	Registry Publisher

	// Concurrency — максимум одновременных чтений (0 — без ограничения).
	Concurrency int

	Logger *slog.Logger
}

// Ingestor читает загрузки и публикует их в реестр.
type Ingestor struct {
	registry    Publisher
	concurrency int
	logger      *slog.Logger
}

// New создаёт Ingestor.
func New(cfg Config) *Ingestor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		registry:    cfg.Registry,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

// Ingest читает все загрузки и заменяет ими содержимое реестра.
//
// Неудачные чтения не попадают в реестр и перечисляются в Result.Dropped.
// Реестр обновляется одним вызовом SetAll после завершения всех чтений,
// даже если часть из них упала. Пустой список загрузок очищает реестр.
func (i *Ingestor) Ingest(ctx context.Context, uploads []Upload) *Result {
	tasks := make([]engine.Task[domain.FileRecord], len(uploads))
	for n, u := range uploads {
		tasks[n] = func(ctx context.Context) (domain.FileRecord, error) {
			content, err := readUpload(u)
			if err != nil {
				return domain.FileRecord{}, err
			}
			return domain.NewFileRecord(u.Path, content), nil
		}
	}

	results := engine.Join(ctx, tasks, engine.JoinOptions{Limit: i.concurrency})

	res := &Result{Files: make([]domain.FileRecord, 0, len(uploads))}
	for n, r := range results {
		if r.Err != nil {
			i.logger.Warn("upload dropped", "file", uploads[n].Path, "error", r.Err)
			res.Dropped = append(res.Dropped, Dropped{Path: uploads[n].Path, Err: r.Err})
			continue
		}
		res.Files = append(res.Files, r.Value)
	}

	i.registry.SetAll(res.Files)

	i.logger.Info("files ingested",
		"files", len(res.Files),
		"dropped", len(res.Dropped),
	)
	return res
}

// readUpload читает содержимое загрузки целиком.
func readUpload(u Upload) (string, error) {
	if u.Open == nil {
		return "", fmt.Errorf("%w: %s", ErrNoContent, u.Path)
	}

	rc, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", u.Path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", u.Path, err)
	}
	if len(data) > maxFileSize {
		return "", fmt.Errorf("%w: %s", ErrFileTooLarge, u.Path)
	}
	return string(data), nil
}
