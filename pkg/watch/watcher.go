package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one data file and triggers a callback after it changes.
// The parent directory is watched so that editors which replace the file
// on save are still noticed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	callback  func(path string)
	out       io.Writer
	mu        sync.Mutex
	pendingAt time.Time // zero when no change is pending
}

// NewWatcher creates a watcher for the file at path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		path:      filepath.Clean(abs),
		debounce:  debounce,
		out:       os.Stdout,
	}, nil
}

// SetCallback sets the function to call when the file changes.
func (w *Watcher) SetCallback(cb func(path string)) {
	w.callback = cb
}

// SetOutput redirects the watcher's status lines.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start watches until ctx is done. Callbacks run one at a time.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	fmt.Fprintln(w.out, color.CyanString("Watching %s for changes...", w.path))
	fmt.Fprintln(w.out, color.CyanString("Press Ctrl+C to stop"))

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(w.out, color.RedString("Watch error: %v", err))
		}
	}
}

// handleEvent marks the file pending on writes and creates of the file itself.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if filepath.Clean(event.Name) != w.path {
		return
	}

	w.mu.Lock()
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.takeReady() {
				w.runCallback()
			}
		}
	}
}

// takeReady clears and reports a change that has been stable for the
// debounce period.
func (w *Watcher) takeReady() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pendingAt.IsZero() || time.Since(w.pendingAt) < w.debounce {
		return false
	}
	w.pendingAt = time.Time{}
	return true
}

func (w *Watcher) runCallback() {
	if w.callback == nil {
		return
	}

	fmt.Fprintln(w.out, color.YellowString("\nFile changed: %s", filepath.Base(w.path)))
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	w.callback(w.path)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedFiles returns the directories registered with fsnotify.
func (w *Watcher) WatchedFiles() []string {
	return w.fsWatcher.WatchList()
}
