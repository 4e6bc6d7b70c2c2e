package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/mq"
)

func TestSubmit_RunsInBackground(t *testing.T) {
	backend := &fakeBackend{}
	f := newFixture(t, backend, domain.NewFileRecord("A.java", "a"))

	ctx, cancel := context.WithCancel(context.Background())
	err := f.orch.Submit(ctx, Command{Kind: domain.RunKindTransform, Prompt: "p"})
	// отмена запроса не прерывает фоновый запуск
	cancel()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	f.orch.Stop()

	if a := f.file(t, "A.java"); a.NewCode != "converted" {
		t.Errorf("expected transformed file, got %+v", a)
	}
	if !f.orch.IsStopped() {
		t.Error("orchestrator should be stopped")
	}
}

func TestSubmit_Errors(t *testing.T) {
	backend := &fakeBackend{}
	f := newFixture(t, backend, domain.NewFileRecord("A.java", "a"))

	if err := f.orch.Submit(context.Background(), Command{Kind: "compile"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if err := f.orch.Submit(context.Background(), Command{Kind: domain.RunKindTransform}); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("expected ErrEmptyPrompt, got %v", err)
	}

	f.orch.Stop()
	err := f.orch.Submit(context.Background(), Command{Kind: domain.RunKindDeploy})
	if !errors.Is(err, ErrOrchestratorStopped) {
		t.Errorf("expected ErrOrchestratorStopped, got %v", err)
	}
}

func TestSubmit_ConcurrentWithStop(t *testing.T) {
	f := newFixture(t, &fakeBackend{}, domain.NewFileRecord("A.java", "a"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.orch.Submit(context.Background(), Command{Kind: domain.RunKindTest})
			if err != nil && !errors.Is(err, ErrRunInProgress) && !errors.Is(err, ErrOrchestratorStopped) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	f.orch.Stop()
	wg.Wait()

	if err := f.orch.Submit(context.Background(), Command{Kind: domain.RunKindTest}); !errors.Is(err, ErrOrchestratorStopped) {
		t.Errorf("expected ErrOrchestratorStopped after Stop, got %v", err)
	}
}

func TestStart_WithoutQueue(t *testing.T) {
	f := newFixture(t, &fakeBackend{})

	if err := f.orch.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	f.orch.Stop()
}

func TestCommandFromPayload(t *testing.T) {
	cmd, err := commandFromPayload(mq.RunRequestedPayload{Kind: "Transform", Prompt: "p", Mode: "multi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != domain.RunKindTransform || cmd.Mode != domain.ModeMulti || cmd.Prompt != "p" {
		t.Errorf("unexpected command: %+v", cmd)
	}

	if _, err := commandFromPayload(mq.RunRequestedPayload{Kind: "compile"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := commandFromPayload(mq.RunRequestedPayload{Kind: "transform", Mode: "batch"}); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestHandleRunRequested(t *testing.T) {
	rec := domain.NewFileRecord("A.java", "a")
	rec.NewCode = "current"

	backend := &fakeBackend{}
	f := newFixture(t, backend, rec)
	f.registry.Select("A.java")

	msg := mq.NewMessage(mq.MessageTypeRunRequested, mq.RunRequestedPayload{Kind: "rethink", Instruction: "again"})
	if err := f.orch.handleRunRequested(context.Background(), &mq.Delivery{Message: *msg}); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	f.orch.Stop()

	if a := f.file(t, "A.java"); a.NewCode != "converted" {
		t.Errorf("expected rethought file, got %+v", a)
	}
}

func TestHandleRunRequested_AcksInvalidCommands(t *testing.T) {
	f := newFixture(t, &fakeBackend{})

	payloads := []mq.RunRequestedPayload{
		{Kind: "unknown"},
		{Kind: "transform", Prompt: ""},
		{Kind: "rethink", Instruction: "x"},
	}
	for _, p := range payloads {
		msg := mq.NewMessage(mq.MessageTypeRunRequested, p)
		if err := f.orch.handleRunRequested(context.Background(), &mq.Delivery{Message: *msg}); err != nil {
			t.Errorf("%+v: invalid command should be acked, got %v", p, err)
		}
	}
}

func TestRecentRuns_Limit(t *testing.T) {
	f := newFixture(t, &fakeBackend{}, domain.NewFileRecord("A.java", "a"))
	f.orch.historySize = 2

	for i := 0; i < 3; i++ {
		mustDeploy(t, f)
	}

	runs := f.orch.RecentRuns(0)
	if len(runs) != 2 {
		t.Fatalf("history should be capped at 2, got %d", len(runs))
	}
	if got := f.orch.RecentRuns(1); len(got) != 1 || got[0].ID != runs[0].ID {
		t.Error("limit should return the newest run")
	}
}
