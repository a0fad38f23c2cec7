package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mapwatch/internal/logging"
)

// inboxWatcher forwards file creation events from the drop folder into
// a buffered channel consumed by the dispatch loop. Events dropped on a
// full channel are logged; the periodic sweep picks the files up later.
type inboxWatcher struct {
	dir    string
	logger *slog.Logger
	events chan string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	quit    chan struct{}
	running bool
}

func newInboxWatcher(dir string, buffer int, logger *slog.Logger) *inboxWatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &inboxWatcher{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "inbox-watcher"),
		events: make(chan string, buffer),
	}
}

// Events returns the channel of created file paths. The channel has a
// single consumer.
func (w *inboxWatcher) Events() <-chan string {
	return w.events
}

// Start begins watching the inbox directory.
func (w *inboxWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.quit = make(chan struct{})
	w.running = true

	quit := w.quit
	go w.watchLoop(ctx, watcher, quit)

	w.logger.Info("inbox watcher started",
		logging.String(logging.FieldEventType, "inbox_watcher_started"),
		logging.String("dir", w.dir),
	)
	return nil
}

// Stop shuts the watcher down.
func (w *inboxWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.quit != nil {
		close(w.quit)
		w.quit = nil
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
	w.running = false

	w.logger.Info("inbox watcher stopped",
		logging.String(logging.FieldEventType, "inbox_watcher_stopped"),
	)
}

func (w *inboxWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, quit chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			select {
			case w.events <- event.Name:
			default:
				w.logger.Warn("event buffer full; file deferred to next sweep",
					logging.String(logging.FieldEventType, "inbox_event_dropped"),
					logging.String(logging.FieldFilename, event.Name),
				)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "inbox watch error", "inbox_watch_error",
				logging.Error(err))
		}
	}
}
