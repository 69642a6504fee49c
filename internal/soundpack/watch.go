package soundpack

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a file must stay quiet before its change is
// reported; editors write in bursts
const watchDebounce = 100 * time.Millisecond

// Watcher reports changes to a soundpack on the OS filesystem. For a
// catalog file only that file is reported; for a directory any catalog or
// audio file inside it is.
type Watcher struct {
	watcher *fsnotify.Watcher
	target  string
	isDir   bool

	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching the soundpack at path
func NewWatcher(path string) (*Watcher, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// watch the parent of a catalog file so editors that replace it by
	// rename are still seen
	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, &Error{Path: dir, Err: err}
	}

	watcher := &Watcher{
		watcher: w,
		target:  path,
		isDir:   info.IsDir(),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher; Events and Errors are closed once it has exited
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	// one timer per file, reset on every event, so only the last write of a
	// burst is reported
	timers := make(map[string]*time.Timer)
	settled := make(chan string)
	defer func() {
		for _, timer := range timers {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.relevant(name) {
				continue
			}
			if timer, ok := timers[name]; ok {
				timer.Reset(watchDebounce)
				continue
			}
			timers[name] = time.AfterFunc(watchDebounce, func() {
				select {
				case settled <- name:
				case <-w.closeCh:
				}
			})
		case name := <-settled:
			delete(timers, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	if !w.isDir {
		return name == w.target
	}
	base := filepath.Base(name)
	if base == CatalogFileName || base == YAMLCatalogFileName {
		return true
	}
	return knownExtension(strings.ToLower(filepath.Ext(base)))
}
