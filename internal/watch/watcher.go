// Package watch re-renders on asset changes during authoring. It watches
// the directories holding the mapping CSVs and their images and publishes
// an asset event when any of them is rewritten.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/normanking/lipsync/internal/bus"
)

// debounceWindow swallows the duplicate write events editors emit when
// saving a file.
const debounceWindow = 250 * time.Millisecond

// Watcher publishes asset.changed events for mapping and image rewrites.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	events  *bus.EventBus
	done    chan struct{}

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// New creates a Watcher and starts its event loop.
func New(logger zerolog.Logger, events *bus.EventBus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		logger:   logger.With().Str("component", "watch").Logger(),
		events:   events,
		done:     make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}

	go w.watchLoop()

	return w, nil
}

// Add watches the directories containing the given files. Empty paths are
// skipped so optional assets (blink mapping, background) can be passed
// through unconditionally.
func (w *Watcher) Add(paths ...string) error {
	seen := make(map[string]struct{})
	for _, path := range paths {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.logger.Debug().Str("dir", dir).Msg("watching")
	}
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !relevantAsset(event.Name) {
				continue
			}
			if w.debounced(event.Name) {
				continue
			}
			w.logger.Info().Str("path", event.Name).Msg("asset changed")
			w.events.Publish(bus.Event{
				Type: bus.EventTypeAssetChanged,
				Data: map[string]any{"path": event.Name},
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// debounced reports whether the path fired within the debounce window.
func (w *Watcher) debounced(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < debounceWindow {
		return true
	}
	w.lastSeen[path] = now
	return false
}

// relevantAsset reports whether a change to this file affects the render.
func relevantAsset(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".png":
		return true
	default:
		return false
	}
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
