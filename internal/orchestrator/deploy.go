package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/service"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

// DeploySummary — итог Deploy.
type DeploySummary struct {
	RunID    string   `json:"run_id"`
	Deployed []string `json:"deployed"`
	Failed   []string `json:"failed"`
}

// Deploy генерирует артефакты и деплоит каждый файл реестра по очереди.
//
// Ошибка одного файла логируется, файл попадает в Failed, обработка
// продолжается со следующего. Повторов нет. Пустой реестр — no-op.
// Пока идёт другой деплой, возвращает ErrRunInProgress.
func (o *Orchestrator) Deploy(ctx context.Context) (*DeploySummary, error) {
	exec, err := o.prepareDeploy()
	if err != nil {
		return nil, err
	}
	return exec(ctx), nil
}

// prepareDeploy захватывает флаг деплоя.
func (o *Orchestrator) prepareDeploy() (func(ctx context.Context) *DeploySummary, error) {
	if !o.ledger.TryStartDeploy() {
		return nil, ErrRunInProgress
	}
	return func(ctx context.Context) *DeploySummary {
		defer o.ledger.FinishDeploy()
		return o.deploy(ctx)
	}, nil
}

func (o *Orchestrator) deploy(ctx context.Context) *DeploySummary {
	files := o.registry.Files()
	summary := &DeploySummary{}
	if len(files) == 0 {
		o.logger.Info("deploy skipped: no files")
		return summary
	}

	run := o.beginRun(ctx, domain.RunKindDeploy, "", len(files))
	defer o.finishRun(ctx, run)
	summary.RunID = run.ID.String()

	for _, f := range files {
		err := o.deployOne(ctx, run, f)
		o.recordResult(run, stageDeploy, err)
		if err != nil {
			telemetry.WithFileName(o.runLogger(run), f.FileName).Warn("deploy failed", "error", err)
			summary.Failed = append(summary.Failed, f.FileName)
			continue
		}
		summary.Deployed = append(summary.Deployed, f.FileName)
	}

	return summary
}

// deployOne: артефакты → сохранение в запись → деплой → логи kubectl.
func (o *Orchestrator) deployOne(ctx context.Context, run *domain.Run, f domain.FileRecord) error {
	name := baseName(f.FileName)

	artifacts, err := o.backend.GenerateArtifacts(ctx, name, f.NewCode)
	if err != nil {
		return fmt.Errorf("generate artifacts: %w", err)
	}

	o.updateFile(ctx, run, f.FileName, domain.FilePatch{
		DockerfileContent: domain.Ptr(artifacts.Dockerfile),
		YAMLContent:       domain.Ptr(artifacts.YAML),
	})

	return o.deployPackage(ctx, run, f.FileName, service.NewDeployPayload(name, f.NewCode, *artifacts))
}

// deployPackage деплоит payload и дописывает вывод kubectl в лог fileName.
// Вызовы деплоя (включая тестовый прогон) выполняются строго по одному.
func (o *Orchestrator) deployPackage(ctx context.Context, run *domain.Run, fileName string, payload service.DeployPayload) error {
	o.deployMu.Lock()
	result, err := o.backend.Deploy(ctx, payload)
	o.deployMu.Unlock()
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	if !result.Succeeded() {
		return fmt.Errorf("%w: deploy status %q", ErrDeployRejected, result.Status)
	}

	logs, ok, err := result.Logs()
	if err != nil {
		return fmt.Errorf("decode kubectl logs: %w", err)
	}
	if ok {
		o.addFileLog(ctx, run, fileName, domain.FormatDeployLog(logs))
	}
	return nil
}
