package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/navbuilder/internal/logfields"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// Watcher reports changes to configuration files and content trees. Bursts
// of events are coalesced: onChange runs once per quiet period.
type Watcher struct {
	w        *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	mu      sync.Mutex
	files   map[string]struct{}
	trees   map[string]struct{}
	ignored []string
	timer   *time.Timer
	last    string
}

// NewWatcher creates a watcher. onChange receives the last changed path of
// each burst.
func NewWatcher(debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		w:        fw,
		debounce: debounce,
		onChange: onChange,
		files:    make(map[string]struct{}),
		trees:    make(map[string]struct{}),
	}, nil
}

// WatchFile watches a single file. Its directory is watched so editors that
// replace the file on save are still noticed.
func (cw *Watcher) WatchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	cw.mu.Lock()
	_, known := cw.files[abs]
	cw.files[abs] = struct{}{}
	cw.mu.Unlock()
	if known {
		return nil
	}
	if err := cw.w.Add(filepath.Dir(abs)); err != nil {
		return ferrors.FileSystemError("failed to watch directory").WithCause(err).
			WithContext("path", filepath.Dir(abs)).Build()
	}
	slog.Debug("Watching file", logfields.File(abs))
	return nil
}

// WatchTree watches root and every directory below it.
func (cw *Watcher) WatchTree(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	cw.mu.Lock()
	cw.trees[abs] = struct{}{}
	cw.mu.Unlock()
	if _, err := os.Stat(abs); err != nil {
		return ferrors.FileSystemError("content directory not found").WithCause(err).
			WithContext("path", abs).Build()
	}
	cw.addDirsRecursive(abs)
	slog.Debug("Watching tree", logfields.Path(abs))
	return nil
}

// Ignore drops events at or below the given paths, such as the output
// directory or the event store.
func (cw *Watcher) Ignore(paths ...string) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil || slices.Contains(cw.ignored, abs) {
			continue
		}
		cw.ignored = append(cw.ignored, abs)
	}
}

// Run dispatches events until ctx is done, then closes the watcher.
func (cw *Watcher) Run(ctx context.Context) error {
	defer cw.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-cw.w.Events:
			if !ok {
				return nil
			}
			cw.handle(ev)
		case err, ok := <-cw.w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (cw *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || !cw.relevant(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			cw.addDirsRecursive(ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	cw.trigger(ev.Name)
}

// relevant reports whether a change to path should cause a rebuild.
func (cw *Watcher) relevant(path string) bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	for _, ig := range cw.ignored {
		// Sibling files such as SQLite journals share the ignored prefix.
		if within(path, ig) || strings.HasPrefix(path, ig+"-") {
			return false
		}
	}
	if _, ok := cw.files[path]; ok {
		return true
	}
	if shouldIgnoreEvent(path) {
		return false
	}
	for root := range cw.trees {
		if within(path, root) {
			return true
		}
	}
	return false
}

func (cw *Watcher) trigger(path string) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.last = path
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		cw.mu.Lock()
		last := cw.last
		cw.mu.Unlock()
		cw.onChange(last)
	})
}

func (cw *Watcher) close() {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	if err := cw.w.Close(); err != nil {
		slog.Warn("Error closing file watcher", logfields.Error(err))
	}
}

func (cw *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if err := cw.w.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// shouldIgnoreEvent returns true for hidden, editor swap and lock files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		return true
	}
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		base == "Thumbs.db"
}
