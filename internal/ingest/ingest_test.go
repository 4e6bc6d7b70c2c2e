package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Codeshift/internal/registry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stringUpload(path, content string) Upload {
	return Upload{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// slowUpload возвращает содержимое после задержки, чтобы чтения завершались не по порядку.
func slowUpload(path, content string, delay time.Duration) Upload {
	return Upload{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			time.Sleep(delay)
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func failingUpload(path string) Upload {
	return Upload{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return nil, errors.New("permission denied")
		},
	}
}

func TestIngest_PublishesInInputOrder(t *testing.T) {
	reg := registry.New()
	ing := New(Config{Registry: reg, Logger: discardLogger()})

	res := ing.Ingest(context.Background(), []Upload{
		slowUpload("src/A.java", "class A {}", 30*time.Millisecond),
		stringUpload("src/B.java", "class B {}"),
		slowUpload("src/C.java", "class C {}", 10*time.Millisecond),
	})

	if len(res.Dropped) != 0 {
		t.Fatalf("unexpected drops: %v", res.Dropped)
	}

	files := reg.Files()
	want := []string{"src/A.java", "src/B.java", "src/C.java"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	for i, name := range want {
		if files[i].FileName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, files[i].FileName)
		}
	}

	a := files[0]
	if a.OldCode != "class A {}" || a.NewCode != "" || !a.Loading || a.Error != "" {
		t.Errorf("unexpected initial record: %+v", a)
	}
}

func TestIngest_FailedReadsDropped(t *testing.T) {
	reg := registry.New()
	ing := New(Config{Registry: reg, Logger: discardLogger()})

	res := ing.Ingest(context.Background(), []Upload{
		stringUpload("A.java", "a"),
		failingUpload("B.java"),
		{Path: "C.java"},
	})

	if reg.Len() != 1 {
		t.Errorf("expected 1 published file, got %d", reg.Len())
	}
	if len(res.Dropped) != 2 {
		t.Fatalf("expected 2 dropped uploads, got %v", res.Dropped)
	}
	if res.Dropped[0].Path != "B.java" || res.Dropped[1].Path != "C.java" {
		t.Errorf("unexpected dropped list: %+v", res.Dropped)
	}
	if !errors.Is(res.Dropped[1].Err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", res.Dropped[1].Err)
	}
}

func TestIngest_ReplacesPreviousSet(t *testing.T) {
	reg := registry.New()
	ing := New(Config{Registry: reg, Logger: discardLogger()})

	uploads := []Upload{stringUpload("A.java", "a"), stringUpload("B.java", "b")}
	ing.Ingest(context.Background(), uploads)
	ing.Ingest(context.Background(), uploads)

	if reg.Len() != 2 {
		t.Errorf("re-ingest should replace, expected 2 files, got %d", reg.Len())
	}

	ing.Ingest(context.Background(), nil)
	if reg.Len() != 0 {
		t.Errorf("empty ingest should clear the registry, got %d", reg.Len())
	}
}

func TestIngest_FileTooLarge(t *testing.T) {
	reg := registry.New()
	ing := New(Config{Registry: reg, Logger: discardLogger()})

	big := strings.Repeat("x", maxFileSize+1)
	res := ing.Ingest(context.Background(), []Upload{stringUpload("big.txt", big)})

	if len(res.Dropped) != 1 || !errors.Is(res.Dropped[0].Err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %+v", res.Dropped)
	}
}
