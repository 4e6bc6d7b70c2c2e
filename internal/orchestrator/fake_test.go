package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/ledger"
	"github.com/shaiso/Codeshift/internal/registry"
	"github.com/shaiso/Codeshift/internal/service"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend — service.Backend с настраиваемыми ответами.
type fakeBackend struct {
	mu sync.Mutex

	transform func(text string) (*service.TransformResult, error)
	batch     func(prompt string, files []service.BatchFile) (*service.BatchResult, error)
	artifacts func(fileName, source string) (*service.Artifacts, error)
	deploy    func(payload service.DeployPayload) (*service.DeployResult, error)
	unitTest  func(fileName, source string) (string, error)

	transformTexts []string
	batchCalls     int
	artifactNames  []string
	deployed       []service.DeployPayload
}

func (f *fakeBackend) Transform(_ context.Context, text string) (*service.TransformResult, error) {
	f.mu.Lock()
	f.transformTexts = append(f.transformTexts, text)
	f.mu.Unlock()

	if f.transform == nil {
		return &service.TransformResult{ConvertedCode: "converted"}, nil
	}
	return f.transform(text)
}

func (f *fakeBackend) TransformBatch(_ context.Context, prompt string, files []service.BatchFile) (*service.BatchResult, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()

	if f.batch == nil {
		return &service.BatchResult{}, nil
	}
	return f.batch(prompt, files)
}

func (f *fakeBackend) GenerateArtifacts(_ context.Context, fileName, source string) (*service.Artifacts, error) {
	f.mu.Lock()
	f.artifactNames = append(f.artifactNames, fileName)
	f.mu.Unlock()

	if f.artifacts == nil {
		return &service.Artifacts{Dockerfile: "FROM scratch", YAML: "kind: Job"}, nil
	}
	return f.artifacts(fileName, source)
}

func (f *fakeBackend) Deploy(_ context.Context, payload service.DeployPayload) (*service.DeployResult, error) {
	f.mu.Lock()
	f.deployed = append(f.deployed, payload)
	f.mu.Unlock()

	if f.deploy == nil {
		return &service.DeployResult{Status: service.DeployStatusSuccess}, nil
	}
	return f.deploy(payload)
}

func (f *fakeBackend) GenerateUnitTest(_ context.Context, fileName, source string) (string, error) {
	if f.unitTest == nil {
		return "test for " + fileName, nil
	}
	return f.unitTest(fileName, source)
}

func (f *fakeBackend) transformCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.transformTexts...)
}

// recordingEvents — EventPublisher, запоминающий события.
type recordingEvents struct {
	mu       sync.Mutex
	started  []domain.Run
	finished []domain.Run
	updates  []string
	logs     []string
}

func (e *recordingEvents) PublishRunStarted(_ context.Context, run *domain.Run) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, *run)
	return nil
}

func (e *recordingEvents) PublishRunFinished(_ context.Context, run *domain.Run) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = append(e.finished, *run)
	return nil
}

func (e *recordingEvents) PublishFileUpdated(_ context.Context, _ uuid.UUID, file domain.FileRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updates = append(e.updates, file.FileName)
	return nil
}

func (e *recordingEvents) PublishFileLog(_ context.Context, _ uuid.UUID, fileName, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = append(e.logs, fileName)
	return nil
}

// recordingStore — RunStore и SnapshotStore в памяти.
type recordingStore struct {
	mu        sync.Mutex
	created   int
	finished  []domain.Run
	snapshots [][]domain.FileRecord
}

func (s *recordingStore) Create(_ context.Context, _ *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	return nil
}

func (s *recordingStore) Finish(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, *run)
	return nil
}

func (s *recordingStore) SaveAll(_ context.Context, files []domain.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, files)
	return nil
}

type fixture struct {
	orch     *Orchestrator
	registry *registry.Registry
	ledger   *ledger.Ledger
	backend  *fakeBackend
}

func newFixture(t *testing.T, backend *fakeBackend, files ...domain.FileRecord) *fixture {
	t.Helper()

	reg := registry.New()
	reg.SetAll(files)
	led := ledger.New()

	orch, err := New(Config{
		Registry: reg,
		Ledger:   led,
		Backend:  backend,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}

	return &fixture{orch: orch, registry: reg, ledger: led, backend: backend}
}

func (f *fixture) file(t *testing.T, name string) domain.FileRecord {
	t.Helper()
	rec, ok := f.registry.Get(name)
	if !ok {
		t.Fatalf("file %s not in registry", name)
	}
	return rec
}

// fileFromPrompt извлекает имя файла из отрендеренного запроса.
func fileFromPrompt(text string) string {
	const marker = "### File: "
	i := strings.Index(text, marker)
	if i < 0 {
		return ""
	}
	rest := text[i+len(marker):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
