package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// WatcherConfig — конфигурация Watcher.
type WatcherConfig struct {
	// Dir — наблюдаемый каталог.
	Dir string

	// Debounce — пауза после последнего события перед перезагрузкой.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher перезагружает реестр из каталога при изменениях в нём.
//
// Серия событий (копирование проекта, git checkout) схлопывается в одну
// перезагрузку через debounce. Каждая перезагрузка — полный FromDir + Ingest.
type Watcher struct {
	ingestor *Ingestor
	dir      string
	debounce time.Duration
	logger   *slog.Logger

	// reloaded вызывается после каждой перезагрузки (для тестов).
	reloaded func(*Result)
}

// NewWatcher создаёт Watcher.
func NewWatcher(ingestor *Ingestor, cfg WatcherConfig) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		ingestor: ingestor,
		dir:      cfg.Dir,
		debounce: debounce,
		logger:   logger,
	}
}

// Run загружает каталог и следит за ним до отмены ctx.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw); err != nil {
		return err
	}

	w.logger.Info("watching upload directory", "dir", w.dir)
	w.reload(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("upload watcher stopped")
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("upload directory changed", "file", event.Name, "op", event.Op.String())

			// новые подкаталоги тоже нужно наблюдать
			if event.Op&fsnotify.Create != 0 {
				if err := w.addTree(fw); err != nil {
					w.logger.Warn("failed to watch new directory", "error", err)
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

// reload перечитывает каталог целиком.
func (w *Watcher) reload(ctx context.Context) {
	uploads, err := FromDir(w.dir)
	if err != nil {
		w.logger.Error("failed to scan upload directory", "dir", w.dir, "error", err)
		return
	}

	res := w.ingestor.Ingest(ctx, uploads)
	if w.reloaded != nil {
		w.reloaded(res)
	}
}

// addTree добавляет каталог и все его не скрытые подкаталоги.
// fsnotify не наблюдает рекурсивно, повторное добавление безопасно.
func (w *Watcher) addTree(fw *fsnotify.Watcher) error {
	return filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
