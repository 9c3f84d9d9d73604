// Copyright 2023 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package filewatcher reloads files when they change on disk.
package filewatcher

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/open-policy-agent/smartcalc/logging"
)

// OnReload is called after one of the watched files was created, written,
// removed or renamed. The path is the changed file.
type OnReload func(ctx context.Context, path string)

// FileWatcher watches a set of files and calls OnReload when one changes.
type FileWatcher struct {
	paths    []string
	onReload OnReload
	logger   logging.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewFileWatcher returns a watcher for paths. Nothing is watched until Start
// is called.
func NewFileWatcher(paths []string, onReload OnReload, logger logging.Logger) *FileWatcher {
	cleaned := make([]string, len(paths))
	for i := range paths {
		cleaned[i] = filepath.Clean(paths[i])
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &FileWatcher{
		paths:    cleaned,
		onReload: onReload,
		logger:   logger,
	}
}

// Start begins watching. The watcher stops when ctx is cancelled or Stop is
// called.
func (w *FileWatcher) Start(ctx context.Context) error {
	watcher, err := w.getWatcher(w.paths)
	if err != nil {
		return err
	}
	w.watcher = watcher
	w.wg.Add(1)
	go w.readWatcher(ctx, watcher)
	return nil
}

// Stop closes the underlying watcher and waits for the event loop to exit.
func (w *FileWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	_ = w.watcher.Close()
	w.wg.Wait()
}

// Files are watched through their directories so that editors replacing the
// file by rename are still observed.
func (w *FileWatcher) getWatcher(paths []string) (*fsnotify.Watcher, error) {
	watchPaths := getWatchPaths(paths)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, path := range watchPaths {
		w.logger.WithFields(map[string]any{"path": path}).Debug("watching path")
		if err := watcher.Add(path); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	return watcher, nil
}

func (w *FileWatcher) readWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()

	mask := fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			_ = watcher.Close()
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if (evt.Op&mask) == 0 || !slices.Contains(w.paths, filepath.Clean(evt.Name)) {
				continue
			}
			w.logger.WithFields(map[string]any{
				"event": evt.String(),
			}).Debug("Registered file event.")
			t0 := time.Now()
			w.onReload(ctx, filepath.Clean(evt.Name))
			w.logger.WithFields(map[string]any{
				"path":     evt.Name,
				"duration": time.Since(t0).String(),
			}).Debug("Processed file event.")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error: %v", err)
		}
	}
}

func getWatchPaths(paths []string) []string {
	result := []string{}
	for _, path := range paths {
		dir := filepath.Dir(path)
		if !slices.Contains(result, dir) {
			result = append(result, dir)
		}
	}
	return result
}
