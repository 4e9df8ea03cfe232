// Package watcher reports changes under a site's page and asset directories
// in debounced batches.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more changes before
// delivering a batch.
const DefaultDebounce = 100 * time.Millisecond

// Dir is a watched directory tree. Kind labels every event under it,
// e.g. "page" or "asset".
type Dir struct {
	Path string
	Kind string
}

// Event represents a file change detected by the watcher.
type Event struct {
	Path string // Absolute path of the changed file
	Kind string // Kind of the Dir it belongs to
}

// Watcher monitors directory trees and calls onChange with each batch of
// changed files. Batches are delivered from a single goroutine, one at a
// time.
type Watcher struct {
	Debounce time.Duration

	// OnError, when set, receives fsnotify errors and failures to watch a
	// newly created directory. It is called from the event goroutine.
	OnError func(error)

	dirs     []Dir
	onChange func([]Event)
	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher for dirs. Nested dirs are allowed; an event takes the
// kind of the deepest Dir containing it.
func New(dirs []Dir, onChange func([]Event)) *Watcher {
	abs := make([]Dir, 0, len(dirs))
	for _, d := range dirs {
		p, err := filepath.Abs(d.Path)
		if err != nil {
			p = filepath.Clean(d.Path)
		}
		abs = append(abs, Dir{Path: p, Kind: d.Kind})
	}
	// Longest first so kindOf finds the deepest match.
	sort.Slice(abs, func(i, j int) bool { return len(abs[i].Path) > len(abs[j].Path) })

	return &Watcher{
		Debounce: DefaultDebounce,
		dirs:     abs,
		onChange: onChange,
		done:     make(chan struct{}),
	}
}

// Start begins watching. Directories that do not exist are skipped.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	for _, d := range w.dirs {
		if _, err := os.Stat(d.Path); os.IsNotExist(err) {
			continue
		}
		if err := w.addTree(d.Path); err != nil {
			fsw.Close()
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for the event goroutine to exit.
// Pending changes that were not yet delivered are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		if w.fsw == nil {
			close(w.done)
			return
		}
		w.fsw.Close()
		<-w.done
	})
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if !d.IsDir() {
			return nil
		}
		if shouldIgnoreDir(root, path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := map[string]Event{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if e, ok := w.handleEvent(ev); ok {
				pending[e.Path] = e
				timer.Reset(w.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]Event, 0, len(pending))
			for _, e := range pending {
				batch = append(batch, e)
			}
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			pending = map[string]Event{}
			w.onChange(batch)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) (Event, bool) {
	// Removals matter too: a deleted page must disappear from the export.
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return Event{}, false
	}

	kind, root := w.kindOf(ev.Name)
	if kind == "" {
		return Event{}, false
	}
	if ignoredPath(root, ev.Name) {
		return Event{}, false
	}

	// New directories are watched, and reported so their files get picked up.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.reportError(fmt.Errorf("watching %s: %w", ev.Name, err))
			}
		}
	}

	return Event{Path: ev.Name, Kind: kind}, true
}

func (w *Watcher) reportError(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}

// kindOf returns the kind and root of the deepest watched Dir containing
// path.
func (w *Watcher) kindOf(path string) (string, string) {
	for _, d := range w.dirs {
		if path == d.Path || strings.HasPrefix(path, d.Path+string(filepath.Separator)) {
			return d.Kind, d.Path
		}
	}
	return "", ""
}

// ignoredPath reports whether any element of path below root is hidden
// (editor swap files, .git) or node_modules.
func ignoredPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "node_modules" || (strings.HasPrefix(part, ".") && part != "." && part != "..") {
			return true
		}
	}
	return false
}

// shouldIgnoreDir returns true if the directory should not be watched.
func shouldIgnoreDir(root, path string) bool {
	name := filepath.Base(path)

	if strings.HasPrefix(name, ".") && path != root {
		return true
	}

	return name == "node_modules"
}
