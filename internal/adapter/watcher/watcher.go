// Package watcher reports changes to the music folder after it was indexed.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/ports"
)

// relevantOps are the operations that can change the indexed library.
const relevantOps = fsnotify.Create | fsnotify.Remove | fsnotify.Rename | fsnotify.Write

// Watcher publishes a LibraryChangedEvent whenever an audio file below the
// music folder is created, removed, renamed or written. Hidden directories
// are not watched. Directories created while running are added to the watch.
type Watcher struct {
	logger *slog.Logger
	bus    ports.EventBus
	root   string
	fs     *fsnotify.Watcher

	// dirs holds every watched directory; a removed directory no longer
	// exists to be checked, so this is how it is recognised
	dirs map[string]struct{}
}

// New starts watching every non-hidden directory below root.
func New(logger *slog.Logger, bus ports.EventBus, root string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		logger: logger,
		bus:    bus,
		root:   root,
		fs:     fs,
		dirs:   make(map[string]struct{}),
	}
	if err := w.addTree(root); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	logger.Debug("watching music folder",
		slog.String("root", root),
		slog.Int("directories", len(fs.WatchList())))
	return w, nil
}

// Run forwards filesystem events until ctx is cancelled, then releases the
// watcher. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fs.Close(); err != nil {
			w.logger.Warn("failed to close watcher", slog.Any("error", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&relevantOps == 0 || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	// a new directory may already hold files; watch it and report it once
	if event.Op.Has(fsnotify.Create) && isDir(event.Name) {
		if err := w.addTree(event.Name); err != nil {
			w.logger.Debug("failed to watch new directory", slog.String("path", event.Name), slog.Any("error", err))
		}
		w.publish(event)
		return
	}

	// a removed or renamed directory takes its whole subtree with it
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if w.forgetTree(event.Name) {
			w.publish(event)
			return
		}
	}

	if domain.IsAudioFile(event.Name) {
		w.publish(event)
	}
}

// forgetTree drops dir and every directory below it from the watched set.
// It reports whether dir was being watched.
func (w *Watcher) forgetTree(dir string) bool {
	if _, ok := w.dirs[dir]; !ok {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for d := range w.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
	return true
}

func (w *Watcher) publish(event fsnotify.Event) {
	w.logger.Debug("music folder changed",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))
	w.bus.Publish(domain.NewLibraryChangedEvent(event.Name, event.Op.String()))
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != dir && strings.HasPrefix(de.Name(), ".") {
				return godirwalk.SkipThis
			}
			if err := w.fs.Add(path); err != nil {
				return err
			}
			w.dirs[path] = struct{}{}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			w.logger.Debug("skipping directory", slog.String("path", path), slog.Any("error", err))
			return godirwalk.SkipNode
		},
	})
}

func isDir(path string) bool {
	de, err := godirwalk.NewDirent(path)
	return err == nil && de.IsDir()
}
