package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/ingest"
	"github.com/shaiso/Codeshift/internal/ledger"
	"github.com/shaiso/Codeshift/internal/orchestrator"
	"github.com/shaiso/Codeshift/internal/registry"
	"github.com/shaiso/Codeshift/internal/repo"
)

// Runner принимает команды запуска (orchestrator.Orchestrator).
type Runner interface {
	Submit(ctx context.Context, cmd orchestrator.Command) error
	ActiveRuns() []domain.Run
	RecentRuns(limit int) []domain.Run
}

// RunLister читает историю запусков из БД (repo.RunRepo).
type RunLister interface {
	List(ctx context.Context, filter repo.RunFilter) ([]domain.Run, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	runner   Runner
	ingestor *ingest.Ingestor
	runRepo  RunLister
	logger   *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Registry *registry.Registry
	Ledger   *ledger.Ledger
	Runner   Runner
	Ingestor *ingest.Ingestor

	// RunRepo — nil, если БД не настроена: история берётся из памяти.
	RunRepo RunLister

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: cfg.Registry,
		ledger:   cfg.Ledger,
		runner:   cfg.Runner,
		ingestor: cfg.Ingestor,
		runRepo:  cfg.RunRepo,
		logger:   logger,
	}
}
