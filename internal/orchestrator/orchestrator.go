package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/engine"
	"github.com/shaiso/Codeshift/internal/ledger"
	"github.com/shaiso/Codeshift/internal/mq"
	"github.com/shaiso/Codeshift/internal/registry"
	"github.com/shaiso/Codeshift/internal/service"
)

// Default configuration values.
const (
	defaultHistorySize = 100
	commandPrefetch    = 1
)

// RunStore сохраняет историю запусков (repo.RunRepo).
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	Finish(ctx context.Context, run *domain.Run) error
}

// SnapshotStore сохраняет состояние файлов после запуска (repo.FileRepo).
type SnapshotStore interface {
	SaveAll(ctx context.Context, files []domain.FileRecord) error
}

// EventPublisher публикует события пайплайна (mq.Publisher).
type EventPublisher interface {
	PublishRunStarted(ctx context.Context, run *domain.Run) error
	PublishRunFinished(ctx context.Context, run *domain.Run) error
	PublishFileUpdated(ctx context.Context, runID uuid.UUID, file domain.FileRecord) error
	PublishFileLog(ctx context.Context, runID uuid.UUID, fileName, text string) error
}

// Orchestrator управляет запусками стадий пайплайна.
type Orchestrator struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	backend  service.Backend

	// Необязательные зависимости
	runs      RunStore
	snapshots SnapshotStore
	events    EventPublisher
	conn      *mq.Connection

	transformPrompt *engine.PromptTemplate
	rethinkPrompt   *engine.PromptTemplate

	concurrency int
	deployTests bool

	// deployMu сериализует вызовы Deployer
	deployMu sync.Mutex

	// Активные и недавно завершённые runs
	activeRuns  map[uuid.UUID]*domain.Run
	history     []domain.Run
	historySize int
	mu          sync.RWMutex

	// Lifecycle
	commandConsumer *mq.Consumer
	logger          *slog.Logger
	cancelFunc      context.CancelFunc
	wg              sync.WaitGroup
	stopped         bool
	stoppedMu       sync.RWMutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	Registry *registry.Registry
	Ledger   *ledger.Ledger
	Backend  service.Backend

	// Persistence (nil — не сохраняется)
	Runs      RunStore
	Snapshots SnapshotStore

	// MQ (nil — события не публикуются, команды не принимаются)
	Events EventPublisher
	Conn   *mq.Connection

	// TransformTemplate и RethinkTemplate переопределяют шаблоны запросов.
	TransformTemplate string
	RethinkTemplate   string

	// Concurrency — максимум одновременных запросов трансформации (0 — без ограничения).
	Concurrency int

	// DeployTests — деплоить тестовый пакет в TestProject.
	DeployTests bool

	// HistorySize — сколько завершённых runs держать в памяти (default: 100).
	HistorySize int

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	transformText := cfg.TransformTemplate
	if transformText == "" {
		transformText = engine.DefaultTransformTemplate
	}
	transformPrompt, err := engine.ParsePrompt("transform", transformText)
	if err != nil {
		return nil, fmt.Errorf("transform template: %w", err)
	}

	rethinkText := cfg.RethinkTemplate
	if rethinkText == "" {
		rethinkText = engine.DefaultRethinkTemplate
	}
	rethinkPrompt, err := engine.ParsePrompt("rethink", rethinkText)
	if err != nil {
		return nil, fmt.Errorf("rethink template: %w", err)
	}

	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = defaultHistorySize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		registry:        cfg.Registry,
		ledger:          cfg.Ledger,
		backend:         cfg.Backend,
		runs:            cfg.Runs,
		snapshots:       cfg.Snapshots,
		events:          cfg.Events,
		conn:            cfg.Conn,
		transformPrompt: transformPrompt,
		rethinkPrompt:   rethinkPrompt,
		concurrency:     cfg.Concurrency,
		deployTests:     cfg.DeployTests,
		activeRuns:      make(map[uuid.UUID]*domain.Run),
		historySize:     historySize,
		logger:          logger,
	}, nil
}

// Start запускает приём команд из очереди runs.requested (если задан Conn).
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	if o.conn == nil {
		o.logger.Info("orchestrator started without command queue")
		return nil
	}

	o.commandConsumer = mq.NewConsumer(o.conn, o.logger, mq.ConsumerConfig{
		Queue:    mq.QueueRunsRequested,
		Handler:  o.handleRunRequested,
		Prefetch: commandPrefetch,
	})

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.commandConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("command consumer error", "error", err)
		}
	}()

	o.logger.Info("orchestrator started", "queue", mq.QueueRunsRequested)
	return nil
}

// Stop останавливает приём команд и ждёт завершения фоновых запусков.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")

	if o.cancelFunc != nil {
		o.cancelFunc()
	}
	if o.commandConsumer != nil {
		o.commandConsumer.Stop()
	}

	o.wg.Wait()

	o.logger.Info("orchestrator stopped")
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}

// Command — запрос на запуск стадии (из API или очереди).
type Command struct {
	Kind        domain.RunKind        `json:"kind"`
	Prompt      string                `json:"prompt,omitempty"`
	Mode        domain.ProcessingMode `json:"mode,omitempty"`
	Instruction string                `json:"instruction,omitempty"`
}

// job — проверенный запуск, готовый к выполнению.
type job func(ctx context.Context)

// Submit проверяет команду синхронно и выполняет её в фоне.
//
// Ошибки валидации и ErrRunInProgress возвращаются сразу. Фоновый запуск
// не зависит от отмены ctx (запрос API может завершиться раньше), Stop
// дожидается его завершения.
func (o *Orchestrator) Submit(ctx context.Context, cmd Command) error {
	// Проверка stopped и wg.Add под одной блокировкой: Stop выставляет
	// stopped до wg.Wait, поэтому после него Add уже не случится.
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()

	if o.stopped {
		return ErrOrchestratorStopped
	}

	run, err := o.prepare(cmd)
	if err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		run(bg)
	}()
	return nil
}

// prepare выбирает и проверяет запуск по виду команды.
func (o *Orchestrator) prepare(cmd Command) (job, error) {
	switch cmd.Kind {
	case domain.RunKindTransform:
		return o.prepareTransform(cmd.Prompt, cmd.Mode)
	case domain.RunKindRethink:
		return o.prepareRethink(cmd.Instruction)
	case domain.RunKindDeploy:
		exec, err := o.prepareDeploy()
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) { exec(ctx) }, nil
	case domain.RunKindTest:
		return o.prepareTest()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cmd.Kind)
	}
}

// ActiveRuns возвращает копии выполняющихся runs.
func (o *Orchestrator) ActiveRuns() []domain.Run {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]domain.Run, 0, len(o.activeRuns))
	for _, r := range o.activeRuns {
		out = append(out, *r)
	}
	return out
}

// RecentRuns возвращает завершённые runs, последние первыми.
func (o *Orchestrator) RecentRuns(limit int) []domain.Run {
	o.mu.RLock()
	defer o.mu.RUnlock()

	n := len(o.history)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.Run, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, o.history[i])
	}
	return out
}
