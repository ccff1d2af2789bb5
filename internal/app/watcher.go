package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

const defaultDebounce = 500 * time.Millisecond

// SourceLoader replaces the session dataset with the contents of a file
type SourceLoader interface {
	LoadFile(ctx context.Context, path string) (domain.DataSummary, error)
}

// SourceWatcher reloads the source file when it is written or recreated.
// Bursts of events inside the debounce window collapse into one reload.
type SourceWatcher struct {
	path     string
	debounce time.Duration
	loader   SourceLoader
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSourceWatcher creates a watcher for path. It does nothing until Start.
func NewSourceWatcher(path string, debounce time.Duration, loader SourceLoader, logger *slog.Logger) *SourceWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &SourceWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		loader:   loader,
		logger:   infrastructure.WithComponent(logger, "source_watcher"),
	}
}

// Start begins watching. The parent directory is watched so editors that
// replace the file through a rename are still picked up.
func (w *SourceWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return errors.New("source watcher already started")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = fw
	w.done = make(chan struct{})
	go w.loop(ctx, fw, w.done)

	w.logger.InfoContext(ctx, "watching source file",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Close stops the watcher and waits for the event loop to exit
func (w *SourceWatcher) Close() error {
	w.mu.Lock()
	fw, done := w.watcher, w.done
	w.watcher = nil
	w.mu.Unlock()

	if fw == nil {
		return nil
	}
	err := fw.Close()
	<-done
	return err
}

func (w *SourceWatcher) loop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case evt, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.WarnContext(ctx, "watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *SourceWatcher) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != w.path {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *SourceWatcher) reload(ctx context.Context) {
	summary, err := w.loader.LoadFile(ctx, w.path)
	if err != nil {
		// The previous dataset stays in place
		w.logger.ErrorContext(ctx, "source reload failed",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}

	w.logger.InfoContext(ctx, "source reloaded",
		slog.String("path", w.path),
		slog.String("dataset_id", summary.DatasetID),
		slog.Int("rows", summary.RowCount))
}
