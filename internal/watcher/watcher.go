// Package watcher watches a document inbox directory and reports files
// ready for text extraction.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/joemacstevens/ohg-scribe/internal/extract"
)

// defaultDebounce absorbs the create+write bursts editors and file copies
// produce before a file settles.
const defaultDebounce = 400 * time.Millisecond

// Inbox watches a single directory (non-recursive) and invokes onDocument
// for every file in a supported extraction format once writes settle.
type Inbox struct {
	dir        string
	onDocument func(path string)
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	timers   map[string]*time.Timer
	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLogger sets a logger for debug events.
func WithLogger(l *zap.Logger) Option {
	return func(i *Inbox) { i.logger = l }
}

// WithDebounce overrides the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(i *Inbox) { i.debounce = d }
}

// NewInbox creates an inbox watcher over dir.
func NewInbox(dir string, onDocument func(path string), opts ...Option) *Inbox {
	i := &Inbox{
		dir:        dir,
		onDocument: onDocument,
		debounce:   defaultDebounce,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// supported reports whether the path's format has an extractor. Legacy and
// unknown formats are skipped silently; the inbox is not the place to
// surface per-file format errors.
func supported(path string) bool {
	switch extract.DetectFormat(path) {
	case extract.FormatUnknown, extract.FormatLegacyPpt:
		return false
	default:
		return true
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// Files already present in the directory are reported once at startup.
func (i *Inbox) Start(ctx context.Context) error {
	i.mu.Lock()
	if i.started {
		i.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		i.mu.Unlock()
		return err
	}
	if err := watcher.Add(i.dir); err != nil {
		_ = watcher.Close()
		i.mu.Unlock()
		return err
	}
	i.watcher = watcher
	i.started = true
	i.mu.Unlock()

	if i.logger != nil {
		i.logger.Debug("inbox watching", zap.String("dir", i.dir))
	}
	i.syncExisting()
	go i.run(ctx)
	return nil
}

// syncExisting schedules every supported file already in the directory.
func (i *Inbox) syncExisting() {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		if i.logger != nil {
			i.logger.Debug("inbox sync failed", zap.Error(err))
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(i.dir, entry.Name())
		if supported(path) {
			i.schedule(path)
		}
	}
}

func (i *Inbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			i.Stop()
			return
		case <-i.done:
			return
		case ev, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			i.handleEvent(ev)
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && i.logger != nil {
				i.logger.Debug("inbox watch error", zap.Error(err))
			}
		}
	}
}

func (i *Inbox) handleEvent(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
			return
		}
		if supported(ev.Name) {
			i.schedule(ev.Name)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		i.cancel(ev.Name)
	}
}

// schedule (re)arms the debounce timer for path.
func (i *Inbox) schedule(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if t, ok := i.timers[path]; ok {
		t.Stop()
	}
	i.timers[path] = time.AfterFunc(i.debounce, func() {
		i.mu.Lock()
		delete(i.timers, path)
		i.mu.Unlock()
		if i.logger != nil {
			i.logger.Debug("inbox document ready", zap.String("path", path))
		}
		if i.onDocument != nil {
			i.onDocument(path)
		}
	})
}

func (i *Inbox) cancel(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if t, ok := i.timers[path]; ok {
		t.Stop()
		delete(i.timers, path)
	}
}

// Stop stops watching and cancels pending notifications.
func (i *Inbox) Stop() {
	i.stopOnce.Do(func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		close(i.done)
		for path, t := range i.timers {
			t.Stop()
			delete(i.timers, path)
		}
		if i.watcher != nil {
			_ = i.watcher.Close()
			i.watcher = nil
		}
		i.started = false
	})
}
