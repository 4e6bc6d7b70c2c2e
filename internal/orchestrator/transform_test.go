package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/service"
)

func TestTransform_Single(t *testing.T) {
	backend := &fakeBackend{
		transform: func(text string) (*service.TransformResult, error) {
			if fileFromPrompt(text) == "B.java" {
				return nil, errBackend
			}
			return &service.TransformResult{
				ConvertedCode: "class A2 {}",
				Suggestions:   service.Suggestions{"use records"},
			}, nil
		},
	}
	f := newFixture(t, backend,
		domain.NewFileRecord("A.java", "class A {}"),
		domain.NewFileRecord("B.java", "class B {}"),
	)

	if err := f.orch.Transform(context.Background(), "to kotlin", domain.ModeSingle); err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	a := f.file(t, "A.java")
	if a.NewCode != "class A2 {}" {
		t.Errorf("expected converted code, got %q", a.NewCode)
	}
	if a.AdviceText() != "use records" {
		t.Errorf("unexpected advice %q", a.AdviceText())
	}
	if a.Loading || a.HasError() {
		t.Errorf("A should be settled without error: %+v", a)
	}
	if a.OldCode != "class A {}" {
		t.Errorf("old code must not change, got %q", a.OldCode)
	}

	b := f.file(t, "B.java")
	if b.Error != domain.ErrMsgTransformFailed {
		t.Errorf("expected failure message, got %q", b.Error)
	}
	if b.NewCode != "" {
		t.Errorf("failed file must keep its new code, got %q", b.NewCode)
	}
	if b.Loading {
		t.Error("B should not be loading")
	}

	done, total := f.ledger.Progress()
	if done != 2 || total != 2 {
		t.Errorf("expected progress 2/2, got %d/%d", done, total)
	}
	if f.ledger.IsUpdating() {
		t.Error("isUpdating should be cleared")
	}

	runs := f.orch.RecentRuns(1)
	if len(runs) != 1 {
		t.Fatalf("expected 1 run in history, got %d", len(runs))
	}
	if runs[0].Status != domain.RunStatusPartial || runs[0].Succeeded != 1 || runs[0].Failed != 1 {
		t.Errorf("unexpected run: %+v", runs[0])
	}
	if len(f.orch.ActiveRuns()) != 0 {
		t.Error("no runs should be active")
	}
}

func TestTransform_SingleWaitsForEveryFile(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		transform: func(text string) (*service.TransformResult, error) {
			if fileFromPrompt(text) == "B.java" {
				<-release
			}
			return &service.TransformResult{ConvertedCode: "converted"}, nil
		},
	}
	f := newFixture(t, backend,
		domain.NewFileRecord("A.java", "a"),
		domain.NewFileRecord("B.java", "b"),
	)

	done := make(chan error, 1)
	go func() { done <- f.orch.Transform(context.Background(), "p", domain.ModeSingle) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n, _ := f.ledger.Progress(); n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("A did not settle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A завершён, B ещё в работе: запуск не закончен
	if n, total := f.ledger.Progress(); n != 1 || total != 2 {
		t.Errorf("expected progress 1/2, got %d/%d", n, total)
	}
	if !f.ledger.IsUpdating() {
		t.Error("isUpdating must stay set until every file settles")
	}
	if a := f.file(t, "A.java"); a.Loading || a.NewCode != "converted" {
		t.Errorf("A should be settled: %+v", a)
	}
	if b := f.file(t, "B.java"); !b.Loading {
		t.Errorf("B should still be loading: %+v", b)
	}
	select {
	case <-done:
		t.Fatal("transform returned before every file settled")
	default:
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if n, _ := f.ledger.Progress(); n != 2 {
		t.Errorf("expected progress 2, got %d", n)
	}
	if f.ledger.IsUpdating() {
		t.Error("isUpdating should be cleared")
	}
}

func TestTransform_SinglePromptFormat(t *testing.T) {
	backend := &fakeBackend{}
	f := newFixture(t, backend, domain.NewFileRecord("src/A.java", "class A {}"))

	if err := f.orch.Transform(context.Background(), "to kotlin", ""); err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	calls := backend.transformCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	want := "### User Prompt:\nto kotlin\n\n### File: src/A.java\n\nclass A {}"
	if calls[0] != want {
		t.Errorf("unexpected prompt:\n%q\nwant:\n%q", calls[0], want)
	}
}

func TestTransform_SuccessClearsPreviousError(t *testing.T) {
	rec := domain.NewFileRecord("A.java", "class A {}")
	rec.NewCode = "previous"
	rec.Error = domain.ErrMsgTransformFailed

	backend := &fakeBackend{
		transform: func(string) (*service.TransformResult, error) {
			return &service.TransformResult{ConvertedCode: ""}, nil
		},
	}
	f := newFixture(t, backend, rec)

	if err := f.orch.Transform(context.Background(), "p", domain.ModeSingle); err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	a := f.file(t, "A.java")
	if a.HasError() {
		t.Errorf("error should be cleared, got %q", a.Error)
	}
	if a.NewCode != "previous" {
		t.Errorf("empty converted code should keep new code, got %q", a.NewCode)
	}
	if a.Advice == nil || *a.Advice != "" {
		t.Errorf("advice should be set to empty text, got %v", a.Advice)
	}
}

func TestTransform_Validation(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		mode    domain.ProcessingMode
		wantErr error
	}{
		{"empty prompt", "", domain.ModeSingle, ErrEmptyPrompt},
		{"blank prompt", "   \n", domain.ModeMulti, ErrEmptyPrompt},
		{"unknown mode", "p", domain.ProcessingMode("batch"), ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			f := newFixture(t, backend, domain.NewFileRecord("A.java", "class A {}"))
			before := f.registry.Files()

			err := f.orch.Transform(context.Background(), tt.prompt, tt.mode)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !IsValidation(err) {
				t.Error("error should be a validation error")
			}
			if !reflect.DeepEqual(before, f.registry.Files()) {
				t.Error("registry must not change")
			}
			if f.ledger.IsUpdating() {
				t.Error("ledger must not be updating")
			}
			if len(backend.transformCalls()) != 0 || backend.batchCalls != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}

func TestTransform_RunInProgress(t *testing.T) {
	backend := &fakeBackend{}
	f := newFixture(t, backend, domain.NewFileRecord("A.java", "class A {}"))
	f.ledger.StartRun(1)

	err := f.orch.Transform(context.Background(), "p", domain.ModeSingle)
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if len(backend.transformCalls()) != 0 {
		t.Error("backend must not be called")
	}
	if !f.ledger.IsUpdating() {
		t.Error("foreign run flag must stay set")
	}
}

func TestTransform_MultiMatchesByBaseName(t *testing.T) {
	var sent []service.BatchFile
	backend := &fakeBackend{
		batch: func(prompt string, files []service.BatchFile) (*service.BatchResult, error) {
			sent = files
			return &service.BatchResult{Files: []service.BatchFileResult{
				{FileName: "A.java", Content: "class A2 {}", Suggestions: service.Suggestions{"one", "two"}},
				{FileName: "A.java", Content: "ignored duplicate"},
				{FileName: "Unknown.java", Content: "x"},
			}}, nil
		},
	}
	f := newFixture(t, backend,
		domain.NewFileRecord("src/A.java", "class A {}"),
		domain.NewFileRecord("src/B.java", "class B {}"),
	)

	if err := f.orch.Transform(context.Background(), "p", domain.ModeMulti); err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	wantSent := []service.BatchFile{
		{FileName: "A.java", Content: "class A {}"},
		{FileName: "B.java", Content: "class B {}"},
	}
	if !reflect.DeepEqual(sent, wantSent) {
		t.Errorf("unexpected batch: %+v", sent)
	}

	a := f.file(t, "src/A.java")
	if a.NewCode != "class A2 {}" || a.AdviceText() != "one\ntwo" || a.Loading {
		t.Errorf("unexpected A: %+v", a)
	}

	b := f.file(t, "src/B.java")
	if !reflect.DeepEqual(b, domain.NewFileRecord("src/B.java", "class B {}")) {
		t.Errorf("unmatched file must stay untouched, got %+v", b)
	}

	done, total := f.ledger.Progress()
	if done != 2 || total != 2 {
		t.Errorf("expected progress 2/2, got %d/%d", done, total)
	}
	if backend.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", backend.batchCalls)
	}
}

func TestTransform_MultiFailureMarksEveryFile(t *testing.T) {
	backend := &fakeBackend{
		batch: func(string, []service.BatchFile) (*service.BatchResult, error) {
			return nil, errBackend
		},
	}
	f := newFixture(t, backend,
		domain.NewFileRecord("A.java", "a"),
		domain.NewFileRecord("B.java", "b"),
	)

	if err := f.orch.Transform(context.Background(), "p", domain.ModeMulti); err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	for _, rec := range f.registry.Files() {
		if rec.Error != domain.ErrMsgBatchFailed {
			t.Errorf("%s: expected batch failure, got %q", rec.FileName, rec.Error)
		}
		if rec.Loading {
			t.Errorf("%s should not be loading", rec.FileName)
		}
	}

	done, _ := f.ledger.Progress()
	if done != 2 {
		t.Errorf("expected progress 2, got %d", done)
	}

	run := f.orch.RecentRuns(1)[0]
	if run.Status != domain.RunStatusFailed || run.Failed != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if !strings.Contains(run.Error, errBackend.Error()) {
		t.Errorf("run error should carry cause, got %q", run.Error)
	}
}

func TestTransform_MultiEmptyRegistry(t *testing.T) {
	backend := &fakeBackend{}
	f := newFixture(t, backend)

	if err := f.orch.Transform(context.Background(), "p", domain.ModeMulti); err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if backend.batchCalls != 0 {
		t.Error("empty batch should not reach the service")
	}
	if f.ledger.IsUpdating() {
		t.Error("isUpdating should be cleared")
	}
}

func TestTransform_PersistsAndPublishes(t *testing.T) {
	backend := &fakeBackend{}
	f := newFixture(t, backend, domain.NewFileRecord("A.java", "a"))

	events := &recordingEvents{}
	store := &recordingStore{}
	f.orch.events = events
	f.orch.runs = store
	f.orch.snapshots = store

	if err := f.orch.Transform(context.Background(), "p", domain.ModeSingle); err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	if len(events.started) != 1 || len(events.finished) != 1 {
		t.Fatalf("expected one started and one finished event, got %d/%d", len(events.started), len(events.finished))
	}
	if events.started[0].Status != domain.RunStatusRunning {
		t.Errorf("started event should carry running status, got %s", events.started[0].Status)
	}
	if events.finished[0].Status != domain.RunStatusSucceeded {
		t.Errorf("finished event should carry final status, got %s", events.finished[0].Status)
	}
	// loading=true, затем результат
	if len(events.updates) != 2 {
		t.Errorf("expected 2 file updates, got %v", events.updates)
	}

	if store.created != 1 || len(store.finished) != 1 {
		t.Errorf("expected run to be stored, got created=%d finished=%d", store.created, len(store.finished))
	}
	if len(store.snapshots) != 1 || store.snapshots[0][0].NewCode != "converted" {
		t.Errorf("unexpected snapshots: %+v", store.snapshots)
	}
}
