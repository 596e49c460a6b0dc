package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/site"
)

// ChangeHandler receives a debounced batch of site-relative page paths.
type ChangeHandler func(ctx context.Context, paths []string)

// Watcher follows the site tree with fsnotify and hands changed pages to
// its handler once writes quiet down. Directories created while watching
// are picked up, so generators that build fresh subtrees keep working.
type Watcher struct {
	root     string
	assetDir string
	excludes []string
	debounce time.Duration
	handler  ChangeHandler

	watcher  *fsnotify.Watcher
	ctx      context.Context
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	stopChan chan struct{}
}

// NewWatcher creates a watcher for the configured site root.
func NewWatcher(cfg *config.Config, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absRoot, err := filepath.Abs(cfg.Site.Root)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("resolve site root: %w", err)
	}

	assetDir := ""
	if base := cfg.Site.AssetBase; base != "" {
		assetDir = filepath.Join(absRoot, filepath.FromSlash(strings.TrimPrefix(base, "/")))
	}

	return &Watcher{
		root:     absRoot,
		assetDir: assetDir,
		excludes: cfg.Site.Exclude,
		debounce: cfg.Daemon.DebounceDuration(),
		handler:  handler,
		watcher:  fsw,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Start registers the site tree and begins delivering change batches.
// The context bounds handler invocations; once it is canceled no further
// batches are delivered.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.ctx = ctx
	slog.Info("Watching site for changes",
		logfields.Path(w.root), slog.Duration("debounce", w.debounce))
	go w.watchLoop(ctx)
	return nil
}

// Stop ends event delivery. A pending debounce batch is dropped.
func (w *Watcher) Stop() {
	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		slog.Error("Error closing file watcher", logfields.Error(err))
	}
}

// addTree registers dir and every subdirectory, honoring the same skip
// rules page discovery uses.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if w.skipDir(path, entry.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// skipDir reports whether a directory is outside watch scope.
func (w *Watcher) skipDir(path, name string) bool {
	if path == w.root {
		return false
	}
	if w.assetDir != "" && path == w.assetDir {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	return site.MatchesExclude(filepath.ToSlash(rel), w.excludes)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Site watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	// New directories join the watch set so pages landing in them later
	// still produce events. Pages written before the watch attached are
	// queued here, since their events are already lost.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(event.Name, filepath.Base(event.Name)) {
				if err := w.addTree(event.Name); err != nil {
					slog.Warn("Failed to watch new directory",
						logfields.Path(event.Name), logfields.Error(err))
				}
				w.queueExisting(event.Name)
			}
			return
		}
	}

	rel, ok := w.relevantPage(event.Name)
	if !ok {
		return
	}
	w.queue(rel)
}

// queue adds a page to the pending batch and restarts the quiet window.
func (w *Watcher) queue(rel string) {
	w.mu.Lock()
	w.pending[rel] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
	w.mu.Unlock()

	slog.Debug("Page change queued", logfields.Page(rel))
}

// queueExisting scans a freshly watched directory for pages that arrived
// before its watch was in place.
func (w *Watcher) queueExisting(dir string) {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if w.skipDir(path, entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if rel, ok := w.relevantPage(path); ok {
			w.queue(rel)
		}
		return nil
	})
	if err != nil {
		slog.Warn("Failed to scan new directory", logfields.Path(dir), logfields.Error(err))
	}
}

// relevantPage maps an event path to a site-relative page path, rejecting
// anything discovery would not enhance.
func (w *Watcher) relevantPage(path string) (string, bool) {
	if !site.IsHTMLPage(path) {
		return "", false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.assetDir != "" {
		if adRel, err := filepath.Rel(w.assetDir, path); err == nil && !strings.HasPrefix(adRel, "..") {
			return "", false
		}
	}
	if site.MatchesExclude(rel, w.excludes) {
		return "", false
	}
	return rel, true
}

// flush delivers the batch collected during the quiet window.
func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	select {
	case <-w.ctx.Done():
		return
	case <-w.stopChan:
		return
	default:
	}

	sort.Strings(paths)
	slog.Info("Processing changed pages", logfields.Count(len(paths)))
	w.handler(w.ctx, paths)
}
