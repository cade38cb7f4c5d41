package library

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Watcher keeps an index of the recordings in the output directory
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	fs        afero.Fs
	dir       string
	entries   map[string]*Entry   // keyed by full path
	dirty     map[string]struct{} // written since the last Refresh
	mu        sync.RWMutex

	// Cached sorted entries to avoid re-sorting on every Entries call
	sortedCache      []Entry
	sortedCacheValid bool

	Events chan WatchEvent
	Errors chan error
	done   chan struct{}
	once   sync.Once
}

// NewWatcher creates a watcher for dir. Listing and stat go through fs.
func NewWatcher(dir string, fs afero.Fs) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if fs == nil {
		fs = afero.NewOsFs()
	}

	w := &Watcher{
		fsWatcher: fsw,
		fs:        fs,
		dir:       filepath.Clean(dir),
		entries:   make(map[string]*Entry),
		dirty:     make(map[string]struct{}),
		Events:    make(chan WatchEvent, 100),
		Errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}

	return w, nil
}

// Discover scans the output directory and starts watching it. A missing
// directory is not an error: its parent is watched until it appears.
func (w *Watcher) Discover() ([]Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.fsWatcher.Add(w.dir); err != nil {
		_ = w.fsWatcher.Add(filepath.Dir(w.dir))
	}

	infos, err := afero.ReadDir(w.fs, w.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	w.entries = make(map[string]*Entry, len(infos))
	w.dirty = make(map[string]struct{})
	for _, info := range infos {
		if !include(info) {
			continue
		}
		path := filepath.Join(w.dir, info.Name())
		w.entries[path] = &Entry{
			Name:    info.Name(),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}
	w.invalidateSortedCache()
	w.rebuildSortedCache()

	return append([]Entry(nil), w.sortedCache...), nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// watchLoop handles fsnotify events
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// Error channel full, drop
			}
		}
	}
}

// handleFSEvent processes a filesystem event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)

	// Output directory created after we started watching its parent
	if name == w.dir && event.Op&fsnotify.Create == fsnotify.Create {
		_ = w.fsWatcher.Add(w.dir)
		log.Debug().Str("dir", w.dir).Msg("library: output directory appeared")
		return
	}

	if filepath.Dir(name) != w.dir {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.handleRemove(name)

	case event.Op&fsnotify.Create != 0:
		w.handleUpsert(name)

	case event.Op&fsnotify.Write != 0:
		w.handleWrite(name)
	}
}

// handleWrite marks a known file as grown. The capture process writes many
// times a second, so sizes are picked up by Refresh instead of per event.
func (w *Watcher) handleWrite(path string) {
	w.mu.Lock()
	_, exists := w.entries[path]
	if exists {
		w.dirty[path] = struct{}{}
	}
	w.mu.Unlock()

	if !exists {
		w.handleUpsert(path)
	}
}

// Refresh re-stats files written since the last call and reports whether
// any entry changed.
func (w *Watcher) Refresh() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for path := range w.dirty {
		delete(w.dirty, path)

		entry, exists := w.entries[path]
		if !exists {
			continue
		}
		info, err := w.fs.Stat(path)
		if err != nil {
			continue
		}
		if info.Size() != entry.Size || !info.ModTime().Equal(entry.ModTime) {
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
			changed = true
		}
	}

	if changed {
		w.invalidateSortedCache()
	}
	return changed
}

// handleUpsert records a new or grown file
func (w *Watcher) handleUpsert(path string) {
	info, err := w.fs.Stat(path)
	if err != nil || !include(info) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	evType := EventUpdated
	entry, exists := w.entries[path]
	if !exists {
		evType = EventCreated
		entry = &Entry{Name: info.Name(), Path: path}
		w.entries[path] = entry
	}
	entry.Size = info.Size()
	entry.ModTime = info.ModTime()
	w.invalidateSortedCache()

	w.send(WatchEvent{Type: evType, Entry: *entry})
}

// handleRemove drops a deleted or renamed file
func (w *Watcher) handleRemove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, exists := w.entries[path]
	if !exists {
		return
	}
	delete(w.entries, path)
	delete(w.dirty, path)
	w.invalidateSortedCache()

	w.send(WatchEvent{Type: EventRemoved, Entry: *entry})
}

// send must be called with w.mu held
func (w *Watcher) send(ev WatchEvent) {
	select {
	case w.Events <- ev:
	default:
		// Event channel full
	}
}

// Entries returns all tracked files, newest first.
// Uses a cached sorted slice to avoid re-sorting on every call.
func (w *Watcher) Entries() []Entry {
	w.mu.RLock()
	if w.sortedCacheValid {
		result := append([]Entry(nil), w.sortedCache...)
		w.mu.RUnlock()
		return result
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	// Double-check after acquiring write lock
	if !w.sortedCacheValid {
		w.rebuildSortedCache()
	}
	return append([]Entry(nil), w.sortedCache...)
}

// rebuildSortedCache must be called with w.mu held for writing.
func (w *Watcher) rebuildSortedCache() {
	w.sortedCache = make([]Entry, 0, len(w.entries))
	for _, e := range w.entries {
		w.sortedCache = append(w.sortedCache, *e)
	}

	// Names embed the start time, so name order is start order
	sort.Slice(w.sortedCache, func(i, j int) bool {
		return w.sortedCache[i].Name > w.sortedCache[j].Name
	})

	w.sortedCacheValid = true
}

// invalidateSortedCache must be called with w.mu held for writing.
func (w *Watcher) invalidateSortedCache() {
	w.sortedCacheValid = false
}

// include filters out directories and hidden files
func include(info os.FileInfo) bool {
	return info.Mode().IsRegular() && !strings.HasPrefix(info.Name(), ".")
}
