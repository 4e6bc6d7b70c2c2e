package orchestrator

import (
	"context"
	"strings"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/engine"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

// Rethink повторно обрабатывает выбранный файл по инструкции пользователя.
// Исходником запроса служит текущий NewCode файла.
func (o *Orchestrator) Rethink(ctx context.Context, instruction string) error {
	exec, err := o.prepareRethink(instruction)
	if err != nil {
		return err
	}
	exec(ctx)
	return nil
}

func (o *Orchestrator) prepareRethink(instruction string) (job, error) {
	selected, ok := o.registry.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyPrompt
	}
	if !o.ledger.TryStartRun(1) {
		return nil, ErrRunInProgress
	}

	return func(ctx context.Context) {
		defer o.ledger.FinishRun()

		run := o.beginRun(ctx, domain.RunKindRethink, domain.ModeSingle, 1)
		defer o.finishRun(ctx, run)

		err := o.rethinkOne(ctx, run, instruction, selected)
		o.ledger.SetProgress(1)
		o.recordResult(run, stageRethink, err)
	}, nil
}

func (o *Orchestrator) rethinkOne(ctx context.Context, run *domain.Run, instruction string, f domain.FileRecord) error {
	logger := telemetry.WithFileName(o.runLogger(run), f.FileName)

	o.updateFile(ctx, run, f.FileName, domain.FilePatch{Loading: domain.Ptr(true)})

	text, err := o.rethinkPrompt.Render(engine.PromptData{
		Prompt:   instruction,
		FileName: f.FileName,
		Code:     f.NewCode,
	})
	if err == nil {
		res, callErr := o.backend.Transform(ctx, text)
		if callErr == nil {
			o.updateFile(ctx, run, f.FileName, successPatch(res.ConvertedCode, res.Suggestions))
			logger.Info("file rethought")
			return nil
		}
		err = callErr
	}

	logger.Warn("rethink failed", "error", err)
	o.updateFile(ctx, run, f.FileName, failurePatch(domain.ErrMsgTransformFailed))
	return err
}
