package network

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// BackendWatcher invalidates backend detection when backend config locations appear or vanish
type BackendWatcher struct {
	detector interfaces.BackendDetector
	watcher  *fsnotify.Watcher
	paths    Paths
	logger   *logrus.Logger
}

// NewBackendWatcher creates a watcher for the netplan directory and the interfaces file
func NewBackendWatcher(detector interfaces.BackendDetector, paths Paths, logger *logrus.Logger) (*BackendWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &BackendWatcher{
		detector: detector,
		watcher:  watcher,
		paths:    paths,
		logger:   logger,
	}, nil
}

// Start watches until ctx is cancelled. Run it in a goroutine.
func (w *BackendWatcher) Start(ctx context.Context) {
	for _, dir := range w.watchedDirs() {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.WithError(err).WithField("path", dir).Warn("Failed to watch backend directory")
		}
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Backend watcher error")

		case <-ctx.Done():
			w.logger.Debug("Backend watcher stopping")
			return
		}
	}
}

// watchedDirs are the parents of the netplan directory and of the interfaces file
func (w *BackendWatcher) watchedDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	for _, dir := range []string{filepath.Dir(w.paths.NetplanDir), filepath.Dir(w.paths.InterfacesFile)} {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (w *BackendWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == filepath.Clean(w.paths.NetplanDir) || name == filepath.Clean(w.paths.InterfacesFile)
}

func (w *BackendWatcher) handleEvent(event fsnotify.Event) {
	if !w.relevant(event) {
		return
	}

	w.logger.WithFields(logrus.Fields{
		"path": event.Name,
		"op":   event.Op.String(),
	}).Info("Backend location changed, invalidating detection")
	w.detector.Invalidate()
}

// Stop releases the watcher
func (w *BackendWatcher) Stop() error {
	return w.watcher.Close()
}
