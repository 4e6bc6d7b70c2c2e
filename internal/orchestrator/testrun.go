package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/service"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

// TestProject генерирует unit test и артефакты деплоя для каждого файла
// по очереди и пишет строки прогресса в ledger.
//
// Работает над снимком списка файлов. В конце в реестр по ключу сливаются
// только UnitTestCode, DockerfileContent и YAMLContent: параллельные правки
// NewCode, Advice и Error сохраняются, файлы, которых уже нет в реестре,
// пропускаются. Ошибка файла логируется, для него больше не пишется строк
// прогресса, обработка продолжается со следующего.
func (o *Orchestrator) TestProject(ctx context.Context) error {
	exec, err := o.prepareTest()
	if err != nil {
		return err
	}
	exec(ctx)
	return nil
}

func (o *Orchestrator) prepareTest() (job, error) {
	if !o.ledger.TryStartTestRun() {
		return nil, ErrRunInProgress
	}

	return func(ctx context.Context) {
		files := o.registry.Files()
		patches := make([]domain.FilePatch, len(files))

		run := o.beginRun(ctx, domain.RunKindTest, "", len(files))
		defer func() {
			for i, f := range files {
				if !patches[i].IsEmpty() {
					o.updateFile(ctx, run, f.FileName, patches[i])
				}
			}
			o.ledger.FinishTestRun(domain.TestResultDone)
			o.finishRun(ctx, run)
		}()

		for i, f := range files {
			err := o.testOne(ctx, run, f, &patches[i])
			o.recordResult(run, stageTest, err)
			if err != nil {
				telemetry.WithFileName(o.runLogger(run), f.FileName).Warn("test preparation failed", "error", err)
			}
		}
	}, nil
}

// testOne собирает в patch сгенерированный unit test и артефакты его деплоя.
func (o *Orchestrator) testOne(ctx context.Context, run *domain.Run, f domain.FileRecord, patch *domain.FilePatch) error {
	unitTest, err := o.backend.GenerateUnitTest(ctx, baseName(f.FileName), f.NewCode)
	if err != nil {
		return fmt.Errorf("generate unit test: %w", err)
	}
	patch.UnitTestCode = domain.Ptr(unitTest)
	o.ledger.AddTestProgress(domain.TestMsgUnitTest(f.FileName))

	testName := TestFileName(f.FileName)
	artifacts, err := o.backend.GenerateArtifacts(ctx, testName, unitTest)
	if err != nil {
		return fmt.Errorf("generate test artifacts: %w", err)
	}
	patch.DockerfileContent = domain.Ptr(artifacts.Dockerfile)
	patch.YAMLContent = domain.Ptr(artifacts.YAML)
	o.ledger.AddTestProgress(domain.TestMsgArtifacts(f.FileName))

	if !o.deployTests {
		return nil
	}

	payload := service.NewDeployPayload(testName, unitTest, *artifacts)
	if err := o.deployPackage(ctx, run, f.FileName, payload); err != nil {
		return fmt.Errorf("deploy test package: %w", err)
	}
	o.ledger.AddTestProgress(domain.TestMsgDeployed(f.FileName))
	return nil
}
