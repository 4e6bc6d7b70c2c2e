package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/engine"
	"github.com/shaiso/Codeshift/internal/service"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

// Стадии для метрик.
const (
	stageTransform = "transform"
	stageRethink   = "rethink"
	stageDeploy    = "deploy"
	stageTest      = "test"
)

// Transform трансформирует все файлы реестра и возвращается после того,
// как каждый файл дошёл до терминального состояния.
//
// Ошибки отдельных файлов записываются в их Error и не возвращаются.
func (o *Orchestrator) Transform(ctx context.Context, prompt string, mode domain.ProcessingMode) error {
	exec, err := o.prepareTransform(prompt, mode)
	if err != nil {
		return err
	}
	exec(ctx)
	return nil
}

// prepareTransform проверяет аргументы и захватывает флаг isUpdating.
func (o *Orchestrator) prepareTransform(prompt string, mode domain.ProcessingMode) (job, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if mode == "" {
		mode = domain.ModeSingle
	}
	if mode != domain.ModeSingle && mode != domain.ModeMulti {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	files := o.registry.Files()
	if !o.ledger.TryStartRun(len(files)) {
		return nil, ErrRunInProgress
	}

	return func(ctx context.Context) {
		defer o.ledger.FinishRun()

		run := o.beginRun(ctx, domain.RunKindTransform, mode, len(files))
		defer o.finishRun(ctx, run)

		if mode == domain.ModeMulti {
			o.transformMulti(ctx, run, prompt, files)
			return
		}
		o.transformSingle(ctx, run, prompt, files)
	}, nil
}

// transformSingle отправляет по запросу на файл, все запросы параллельно.
// Прогресс растёт по мере завершения запросов в любом порядке.
func (o *Orchestrator) transformSingle(ctx context.Context, run *domain.Run, prompt string, files []domain.FileRecord) {
	tasks := make([]engine.Task[struct{}], len(files))
	for i, f := range files {
		o.updateFile(ctx, run, f.FileName, domain.FilePatch{Loading: domain.Ptr(true)})

		tasks[i] = func(ctx context.Context) (struct{}, error) {
			err := o.transformOne(ctx, run, prompt, f)
			o.ledger.IncrementProgress()
			return struct{}{}, err
		}
	}

	results := engine.Join(ctx, tasks, engine.JoinOptions{Limit: o.concurrency})
	for _, r := range results {
		o.recordResult(run, stageTransform, r.Err)
	}

	if failed := engine.Failed(results); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, idx := range failed {
			names[i] = files[idx].FileName
		}
		o.runLogger(run).Warn("transform finished with failures", "failed", len(failed), "files", names)
	}
}

// transformOne трансформирует один файл и сливает результат в реестр.
func (o *Orchestrator) transformOne(ctx context.Context, run *domain.Run, prompt string, f domain.FileRecord) error {
	logger := telemetry.WithFileName(o.runLogger(run), f.FileName)

	text, err := o.transformPrompt.Render(engine.PromptData{
		Prompt:   prompt,
		FileName: f.FileName,
		Code:     f.OldCode,
	})
	if err == nil {
		var res *service.TransformResult
		res, err = o.backend.Transform(ctx, text)
		if err == nil {
			o.updateFile(ctx, run, f.FileName, successPatch(res.ConvertedCode, res.Suggestions))
			logger.Debug("file transformed")
			return nil
		}
	}

	logger.Warn("file transform failed", "error", err)
	o.updateFile(ctx, run, f.FileName, failurePatch(domain.ErrMsgTransformFailed))
	return err
}

// transformMulti отправляет все файлы одним пакетным запросом.
//
// Ответ сопоставляется по базовому имени файла (первый элемент с таким
// file_name). Файлы без элемента в ответе не меняются. Ошибка запроса
// помечает каждый файл пакета.
func (o *Orchestrator) transformMulti(ctx context.Context, run *domain.Run, prompt string, files []domain.FileRecord) {
	logger := o.runLogger(run)

	if len(files) == 0 {
		logger.Info("nothing to transform")
		return
	}

	batch := make([]service.BatchFile, len(files))
	for i, f := range files {
		batch[i] = service.BatchFile{FileName: baseName(f.FileName), Content: f.OldCode}
	}

	res, err := o.backend.TransformBatch(ctx, prompt, batch)
	o.ledger.SetProgress(len(files))

	if err != nil {
		logger.Warn("batch transform failed", "files", len(files), "error", err)
		o.failRun(run, err)
		for _, f := range files {
			o.updateFile(ctx, run, f.FileName, failurePatch(domain.ErrMsgBatchFailed))
			o.recordResult(run, stageTransform, err)
		}
		return
	}

	for _, f := range files {
		entry, ok := res.Find(baseName(f.FileName))
		if !ok {
			logger.Debug("no batch result for file", "file", f.FileName)
			continue
		}
		o.updateFile(ctx, run, f.FileName, domain.FilePatch{
			NewCode: domain.Ptr(entry.Content),
			Advice:  domain.Ptr(entry.Suggestions.Text()),
			Loading: domain.Ptr(false),
			Error:   domain.Ptr(""),
		})
		o.recordResult(run, stageTransform, nil)
	}
}

// successPatch — результат успешной трансформации. Пустой convertedCode
// оставляет текущий NewCode.
func successPatch(convertedCode string, suggestions service.Suggestions) domain.FilePatch {
	patch := domain.FilePatch{
		Advice:  domain.Ptr(suggestions.Text()),
		Loading: domain.Ptr(false),
		Error:   domain.Ptr(""),
	}
	if convertedCode != "" {
		patch.NewCode = domain.Ptr(convertedCode)
	}
	return patch
}

// failurePatch — ошибка трансформации: NewCode не трогается.
func failurePatch(msg string) domain.FilePatch {
	return domain.FilePatch{
		Error:   domain.Ptr(msg),
		Loading: domain.Ptr(false),
	}
}
