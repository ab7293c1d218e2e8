package index

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/classkit/classkit/internal/debug"
)

// Watcher keeps the index current as files change on disk. Events are
// debounced and coalesced per path so editor save bursts trigger a single
// rescan per file.
type Watcher struct {
	ix      *Index
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]fsnotify.Op
	timer   *time.Timer

	debounce time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher builds a watcher over the index's workspace. debounce bounds
// how long after the last event a rescan waits; zero selects a default.
func NewWatcher(ix *Index, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		ix:       ix,
		watcher:  fw,
		pending:  make(map[string]fsnotify.Op),
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

// Start registers watches on the workspace root and every subdirectory not
// excluded by the workspace patterns, then begins processing events.
func (w *Watcher) Start() error {
	root := w.ix.ws.Root
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		base := d.Name()
		if base == ".git" || base == "bin" || base == "obj" || base == "node_modules" {
			return filepath.SkipDir
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			debug.Printf("watch: cannot watch %s: %v", path, addErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.wg.Add(1)
	go w.run()
	return nil
}

// Close stops event processing and releases the OS watches.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	// New directories need watches of their own.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(ev.Name); err != nil {
				debug.Printf("watch: cannot watch %s: %v", ev.Name, err)
			}
			return
		}
	}
	if !strings.HasSuffix(ev.Name, ".cs") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// Later operations on the same path supersede earlier ones; a remove
	// after a write is just a remove.
	w.pending[ev.Name] = ev.Op
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

// flush applies every coalesced event in one batch.
func (w *Watcher) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	root := w.ix.ws.Root
	for path, op := range batch {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			w.ix.RemoveFile(rel)
		} else {
			w.ix.UpdateFile(rel)
		}
	}
}
