// Package watcher handles file system watching for the daemon.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/breakreminder/breakreminder/internal/config"
)

// DefaultDebounce coalesces bursts of events for the same file.
const DefaultDebounce = 100 * time.Millisecond

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
	EventSettingsRemoved
)

func (t EventType) String() string {
	switch t {
	case EventSettingsChanged:
		return "settings-changed"
	case EventSettingsRemoved:
		return "settings-removed"
	default:
		return "unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the global directory for settings changes.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	dir        string
	delay      time.Duration
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for dir. An empty dir means the global directory.
func New(dir string) (*Watcher, error) {
	if dir == "" {
		var err error
		dir, err = config.GlobalDir()
		if err != nil {
			return nil, err
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		dir:        dir,
		delay:      DefaultDebounce,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		debounce:   make(map[string]*time.Timer),
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts the watcher. The directory is watched rather than the file
// so atomic replace-by-rename saves keep being observed.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}

	log.Printf("[watcher] Watching %s", filepath.Join(w.dir, config.SettingsFileName))
	go w.processEvents()
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] Error: %v", err)
		}
	}
}

// handleEvent filters events down to the settings file.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != config.SettingsFileName {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.debounceEvent(event.Name, func() {
		w.processFileChange(event.Name)
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

// processFileChange reports the settle state of the file after debouncing.
// The op of the last raw event is unreliable across platforms, so the file
// is stat'ed instead.
func (w *Watcher) processFileChange(path string) {
	ev := Event{Type: EventSettingsChanged, Path: path}
	if !config.FileExists(path) {
		ev.Type = EventSettingsRemoved
	}

	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}
