package project

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a document file. Editors often save by
// writing a temp file and renaming it, so the parent directory is watched
// and events are filtered by name. A burst of events settles for the
// debounce period, then fires once if the modification time moved.
type Watcher struct {
	path     string
	debounce time.Duration

	mu       sync.Mutex
	baseline time.Time
	onChange func(path string)
	stopCh   chan struct{}
}

// NewWatcher creates a watcher for path. The current modification time is
// the baseline; a missing file has a zero baseline.
func NewWatcher(path string, debounce time.Duration) *Watcher {
	w := &Watcher{path: filepath.Clean(path), debounce: debounce}
	w.ResetBaseline()
	return w
}

// OnChange sets the callback. It runs on the watcher goroutine.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Start begins watching in a background goroutine. Starting a running
// watcher does nothing.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}
	w.stopCh = make(chan struct{})
	go w.loop(fw, w.stopCh)
	return nil
}

// Stop ends watching. It is safe to call before Start and more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	w.stopCh = nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher, stop chan struct{}) {
	defer fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Chmod) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %s: %v", w.path, err)
		case <-fire:
			fire = nil
			if !w.changed() {
				continue
			}
			w.mu.Lock()
			fn := w.onChange
			w.mu.Unlock()
			if fn != nil {
				fn(w.path)
			}
		}
	}
}

// changed reports a newer modification time and adopts it as the baseline.
func (w *Watcher) changed() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !info.ModTime().After(w.baseline) {
		return false
	}
	w.baseline = info.ModTime()
	return true
}

// ResetBaseline adopts the file's current modification time.
func (w *Watcher) ResetBaseline() {
	info, err := os.Stat(w.path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.baseline = time.Time{}
		return
	}
	w.baseline = info.ModTime()
}
