// Codeshift API — HTTP сервер пайплайна трансформации кода.
//
// Процесс держит реестр файлов и ledger в памяти и:
//   - принимает загрузки, запуски стадий и запросы состояния по HTTP
//   - (опционально) сохраняет историю runs и снимки файлов в Postgres
//   - (опционально) публикует события и принимает команды через RabbitMQ
//   - (опционально) перезагружает реестр при изменениях в watch-каталоге
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Codeshift/internal/api"
	"github.com/shaiso/Codeshift/internal/config"
	"github.com/shaiso/Codeshift/internal/ingest"
	"github.com/shaiso/Codeshift/internal/ledger"
	"github.com/shaiso/Codeshift/internal/mq"
	"github.com/shaiso/Codeshift/internal/orchestrator"
	"github.com/shaiso/Codeshift/internal/registry"
	"github.com/shaiso/Codeshift/internal/repo"
	"github.com/shaiso/Codeshift/internal/service"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger(telemetry.LogOptionsFromEnv())
	logger.Info("starting codeshift-api")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create service backend", "error", err)
		os.Exit(1)
	}

	reg := registry.New()
	led := ledger.New()

	orchCfg := orchestrator.Config{
		Registry:          reg,
		Ledger:            led,
		Backend:           backend,
		TransformTemplate: cfg.Transform.PromptTemplate,
		RethinkTemplate:   cfg.Transform.RethinkTemplate,
		Concurrency:       cfg.Transform.Concurrency,
		DeployTests:       cfg.Test.Deploy,
		Logger:            logger,
	}

	// Postgres (опционально)
	var runLister api.RunLister
	if cfg.Database.URL != "" {
		pool, err := repo.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repo.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		logger.Info("database connected")

		runRepo := repo.NewRunRepo(pool)
		orchCfg.Runs = runRepo
		orchCfg.Snapshots = repo.NewFileRepo(pool)
		runLister = runRepo
	}

	// RabbitMQ (опционально)
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := mq.NewConnection(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events disabled", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			orchCfg.Events = mq.NewPublisher(mqConn, logger)
			orchCfg.Conn = mqConn
		}
	}

	orch, err := orchestrator.New(orchCfg)
	if err != nil {
		logger.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}
	if err := orch.Start(ctx); err != nil {
		logger.Error("failed to start orchestrator", "error", err)
		os.Exit(1)
	}

	ingestor := ingest.New(ingest.Config{
		Registry:    reg,
		Concurrency: cfg.Transform.Concurrency,
		Logger:      logger,
	})

	if cfg.Ingest.WatchDir != "" {
		watcher := ingest.NewWatcher(ingestor, ingest.WatcherConfig{
			Dir:      cfg.Ingest.WatchDir,
			Debounce: cfg.Ingest.Debounce,
			Logger:   logger,
		})
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("upload watcher stopped", "error", err)
			}
		}()
	}

	handler := api.NewHandler(api.Config{
		Registry: reg,
		Ledger:   led,
		Runner:   orch,
		Ingestor: ingestor,
		RunRepo:  runLister,
		Logger:   logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Дожидаемся фоновых запусков
	orch.Stop()

	logger.Info("stopped")
}

// newBackend собирает клиент внешних сервисов.
//
// Backend "llm" заменяет только трансформацию (одиночную и пакетную) на
// chat-модель; генерация артефактов, деплой и unit test остаются за
// HTTP-сервисом.
func newBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*service.Composite, error) {
	httpClient := service.NewHTTPClient(service.HTTPClientConfig{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.Service.Timeout,
		Endpoints: service.Endpoints{
			Unified:         cfg.Service.Endpoints.Unified,
			Multi:           cfg.Service.Endpoints.Multi,
			DeploymentFiles: cfg.Service.Endpoints.DeploymentFiles,
			Deploy:          cfg.Service.Endpoints.Deploy,
			UnitTest:        cfg.Service.Endpoints.UnitTest,
		},
		Logger: logger,
	})

	backend := &service.Composite{
		Transformer:       httpClient,
		BatchTransformer:  httpClient,
		ArtifactGenerator: httpClient,
		Deployer:          httpClient,
		TestGenerator:     httpClient,
	}

	if cfg.Transform.Backend != config.BackendLLM {
		logger.Info("transform backend: http", "base_url", cfg.Service.BaseURL)
		return backend, nil
	}

	chatModel, err := service.NewChatModel(ctx, service.ModelConfig{
		Type:        cfg.LLM.Type,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("chat model: %w", err)
	}

	chat := service.NewChatTransformer(chatModel, logger)
	backend.Transformer = chat
	backend.BatchTransformer = chat

	logger.Info("transform backend: llm", "type", cfg.LLM.Type, "model", cfg.LLM.Model)
	return backend, nil
}
