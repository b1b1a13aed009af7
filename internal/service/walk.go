package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// ignoreFiles are read from every walked directory. Their patterns apply to
// paths below that directory, the same way git applies nested .gitignore files.
var ignoreFiles = []string{".gitignore", ".ignore"}

// walker collects candidate audio files below a root directory.
type walker struct {
	root     string
	logger   *slog.Logger
	matchers map[string][]*ignore.GitIgnore
}

// collectAudioFiles walks root in lexical order and returns every audio file
// that is neither hidden nor excluded by an ignore file. Unreadable entries,
// the root included, are skipped.
func collectAudioFiles(ctx context.Context, root string, logger *slog.Logger) ([]string, error) {
	w := &walker{
		root:     filepath.Clean(root),
		logger:   logger,
		matchers: make(map[string][]*ignore.GitIgnore),
	}

	files := make([]string, 0)

	// godirwalk fails before any callback when the root itself is unusable
	if _, err := os.Lstat(w.root); err != nil {
		logger.Debug("skipping unreadable music folder", slog.String("path", w.root), slog.Any("error", err))
		return files, nil
	}

	err := godirwalk.Walk(w.root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if path == w.root {
				w.loadIgnores(path)
				return nil
			}

			if strings.HasPrefix(de.Name(), ".") || w.ignored(path, de.IsDir()) {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}

			if de.IsDir() {
				w.loadIgnores(path)
				return nil
			}

			if domain.IsAudioFile(path) {
				files = append(files, path)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			logger.Debug("skipping unreadable entry", slog.String("path", path), slog.Any("error", err))
			return godirwalk.SkipNode
		},
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (w *walker) loadIgnores(dir string) {
	for _, name := range ignoreFiles {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		w.matchers[dir] = append(w.matchers[dir], gi)
	}
}

// ignored checks path against the matchers of every ancestor directory.
func (w *walker) ignored(path string, isDir bool) bool {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		for _, gi := range w.matchers[dir] {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				break
			}
			rel = filepath.ToSlash(rel)
			if gi.MatchesPath(rel) || (isDir && gi.MatchesPath(rel+"/")) {
				return true
			}
		}
		if dir == w.root || dir == filepath.Dir(dir) {
			return false
		}
	}
}
