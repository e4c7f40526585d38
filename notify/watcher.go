/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notify

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes a file-backed store for writes made by other processes
// and forwards them to a Hub as a keyless Event (Key == "", nil NewValue,
// Source == "external"). Listeners cannot know which logical key changed,
// so they re-read whatever they depend on; the payload is deliberately
// empty.
type Watcher struct {
	fw     *fsnotify.Watcher
	hub    *Hub
	path   string
	logger *zap.Logger
	done   chan struct{}
}

// NewWatcher starts watching the store file at path and dispatching into
// hub. Close the watcher to stop.
func NewWatcher(path string, hub *Hub, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory, not the file: atomic rename writes replace the
	// inode, and a watch pinned to the old inode would go silent.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		fw:     fw,
		hub:    hub,
		path:   filepath.Clean(path),
		logger: logger,
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("store file changed externally",
				zap.String("path", w.path),
				zap.String("op", ev.Op.String()))
			w.hub.Dispatch(Event{Source: "external"})
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}
