package watchfolder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
)

const sweepInterval = time.Second

// candidate tracks a file waiting to settle before enqueueing.
type candidate struct {
	size        int64
	stableTicks int
}

// Watcher monitors the configured watch directory and enqueues stable files.
type Watcher struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service

	mu      sync.Mutex
	pending map[string]*candidate
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a watch folder monitor.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Watcher{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		notifier: notifier,
		pending:  make(map[string]*candidate),
	}
}

// Start begins watching. Files already sitting in the directory are swept
// through the same stability check as new arrivals.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := fw.Add(w.cfg.Paths.WatchDir); err != nil {
		fw.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.cfg.Paths.WatchDir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	w.sweepExisting()

	go w.run(runCtx, fw)
	return nil
}

// Stop terminates the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watcher error", logging.Error(err))
		case <-ticker.C:
			w.checkPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		if !w.eligible(event.Name) {
			return
		}
		w.markPending(event.Name)
	}
}

func (w *Watcher) sweepExisting() {
	entries, err := os.ReadDir(w.cfg.Paths.WatchDir)
	if err != nil {
		w.logger.Warn("initial watch directory sweep failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.Paths.WatchDir, entry.Name())
		if w.eligible(path) {
			w.markPending(path)
		}
	}
}

func (w *Watcher) markPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[path]; !ok {
		w.pending[path] = &candidate{size: -1}
		w.logger.Debug("file noticed", logging.String("path", path))
	}
}

// checkPending enqueues candidates whose size has held steady long enough.
func (w *Watcher) checkPending(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			w.mu.Lock()
			delete(w.pending, path)
			w.mu.Unlock()
			continue
		}

		w.mu.Lock()
		cand := w.pending[path]
		if cand == nil {
			w.mu.Unlock()
			continue
		}
		if info.Size() > 0 && info.Size() == cand.size {
			cand.stableTicks++
		} else {
			cand.size = info.Size()
			cand.stableTicks = 0
		}
		ready := cand.stableTicks >= w.cfg.Workflow.StableSeconds
		if ready {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ready {
			w.enqueue(ctx, path)
		}
	}
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	existing, err := w.store.FindBySourcePath(ctx, path)
	if err != nil {
		w.logger.Error("duplicate lookup failed", logging.String("path", path), logging.Error(err))
		return
	}
	if existing != nil {
		w.logger.Debug("file already queued", logging.String("path", path))
		return
	}

	item, err := w.store.NewFile(ctx, path)
	if err != nil {
		w.logger.Error("failed to enqueue file", logging.String("path", path), logging.Error(err))
		return
	}

	w.logger.Info("file stable, queued for analysis",
		logging.String("path", path),
		logging.Int64("item_id", item.ID),
		logging.String("title", item.Title),
	)
	if err := w.notifier.NotifyFileQueued(ctx, item.Title); err != nil {
		w.logger.Warn("queue notification failed", logging.Error(err))
	}
}

// eligible reports whether the path carries one of the watched extensions.
func (w *Watcher) eligible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, allowed := range w.cfg.Workflow.WatchExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}
