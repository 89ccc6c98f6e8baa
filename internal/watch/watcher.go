// Package watch triggers a rebuild when documentation sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpublish/internal/logfields"
)

// DefaultDebounce collapses bursts of editor writes into one rebuild.
const DefaultDebounce = 2 * time.Second

// Watcher monitors a source tree recursively. Excluded directories (the
// generator's output root, VCS metadata) are never watched, so a build does
// not retrigger itself.
type Watcher struct {
	root     string
	exclude  []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New creates a watcher for root. exclude holds directories to skip.
func New(root string, debounce time.Duration, exclude ...string) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{root: absRoot, debounce: debounce}
	for _, e := range append([]string{".git"}, exclude...) {
		if strings.ContainsRune(e, filepath.Separator) && !filepath.IsAbs(e) {
			if abs, err := filepath.Abs(e); err == nil {
				e = abs
			}
		}
		w.exclude = append(w.exclude, filepath.Clean(e))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw
	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Excluded reports whether path lies in an excluded directory. Bare names
// (".git") match any path component; paths match by prefix.
func (w *Watcher) Excluded(path string) bool {
	path = filepath.Clean(path)
	for _, e := range w.exclude {
		if filepath.IsAbs(e) {
			if path == e || strings.HasPrefix(path, e+string(filepath.Separator)) {
				return true
			}
			continue
		}
		for _, part := range strings.Split(path, string(filepath.Separator)) {
			if part == e {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.Excluded(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run calls onChange after each debounced burst of changes until ctx is
// done. onChange runs on the watch goroutine, so rebuilds never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	defer func() { _ = w.fsw.Close() }()
	slog.Info("Watching documentation sources", logfields.Path(w.root))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.Excluded(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if err := w.addTree(event.Name); err != nil {
					slog.Debug("Skipping new path", logfields.Path(event.Name), logfields.Error(err))
				}
			}
			slog.Debug("Source change detected", logfields.Path(event.Name), "op", event.Op.String())
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true
		case <-timer.C:
			pending = false
			onChange(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}
