package orchestrator

import (
	"context"
	"log/slog"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

// beginRun регистрирует новый run: активные runs, метрики, БД, событие.
func (o *Orchestrator) beginRun(ctx context.Context, kind domain.RunKind, mode domain.ProcessingMode, total int) *domain.Run {
	run := domain.NewRun(kind, total)
	run.Mode = mode

	o.mu.Lock()
	o.activeRuns[run.ID] = run
	o.mu.Unlock()

	telemetry.RunStarted(string(kind))

	logger := o.runLogger(run)
	logger.Info("run started", "kind", kind, "mode", mode, "total", total)

	if o.runs != nil {
		if err := o.runs.Create(ctx, run); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}
	if o.events != nil {
		if err := o.events.PublishRunStarted(ctx, o.runCopy(run)); err != nil {
			logger.Warn("failed to publish run.started", "error", err)
		}
	}

	return run
}

// finishRun переводит run в терминальный статус и сохраняет итог.
func (o *Orchestrator) finishRun(ctx context.Context, run *domain.Run) {
	o.mu.Lock()
	run.Finish()
	final := *run
	delete(o.activeRuns, run.ID)
	o.history = append(o.history, final)
	if len(o.history) > o.historySize {
		o.history = o.history[len(o.history)-o.historySize:]
	}
	o.mu.Unlock()

	telemetry.RunFinished(string(final.Kind), string(final.Status))

	logger := o.runLogger(&final)
	logger.Info("run finished",
		"status", final.Status,
		"succeeded", final.Succeeded,
		"failed", final.Failed,
		"duration", final.Duration(),
	)

	if o.runs != nil {
		if err := o.runs.Finish(ctx, &final); err != nil {
			logger.Error("failed to save run result", "error", err)
		}
	}
	if o.snapshots != nil {
		if err := o.snapshots.SaveAll(ctx, o.registry.Files()); err != nil {
			logger.Error("failed to save file snapshots", "error", err)
		}
	}
	if o.events != nil {
		if err := o.events.PublishRunFinished(ctx, &final); err != nil {
			logger.Warn("failed to publish run.finished", "error", err)
		}
	}
}

// recordResult учитывает исход обработки одного файла.
func (o *Orchestrator) recordResult(run *domain.Run, stage string, err error) {
	o.mu.Lock()
	if err != nil {
		run.RecordFailure()
	} else {
		run.RecordSuccess()
	}
	o.mu.Unlock()

	telemetry.FileResult(stage, err)
}

// failRun помечает run ошибкой уровня запуска (например, пакетный запрос).
func (o *Orchestrator) failRun(run *domain.Run, err error) {
	o.mu.Lock()
	run.Error = err.Error()
	o.mu.Unlock()
}

// updateFile применяет patch к файлу и публикует file.updated.
func (o *Orchestrator) updateFile(ctx context.Context, run *domain.Run, fileName string, patch domain.FilePatch) {
	if !o.registry.Update(fileName, patch) {
		// файл удалён из реестра (новая загрузка или clear) во время запуска
		o.runLogger(run).Debug("file no longer in registry", "file", fileName)
		return
	}

	if o.events == nil {
		return
	}
	if rec, ok := o.registry.Get(fileName); ok {
		if err := o.events.PublishFileUpdated(ctx, run.ID, rec); err != nil {
			o.runLogger(run).Warn("failed to publish file.updated", "file", fileName, "error", err)
		}
	}
}

// addFileLog дописывает лог файла и публикует file.log.
func (o *Orchestrator) addFileLog(ctx context.Context, run *domain.Run, fileName, text string) {
	o.ledger.AddFileLog(fileName, text)

	if o.events == nil {
		return
	}
	if err := o.events.PublishFileLog(ctx, run.ID, fileName, text); err != nil {
		o.runLogger(run).Warn("failed to publish file.log", "file", fileName, "error", err)
	}
}

// runCopy возвращает копию run под блокировкой.
func (o *Orchestrator) runCopy(run *domain.Run) *domain.Run {
	o.mu.RLock()
	defer o.mu.RUnlock()
	c := *run
	return &c
}

func (o *Orchestrator) runLogger(run *domain.Run) *slog.Logger {
	return telemetry.WithRunID(o.logger, run.ID.String()).With("kind", run.Kind)
}
