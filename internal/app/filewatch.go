package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vecdraw/internal/logging"
)

// settleDelay coalesces the bursts of events one save produces.
const settleDelay = 150 * time.Millisecond

// FileWatcher reports when a file is written, created or replaced. It
// watches the parent directory so editors that save by rename are seen.
// The callback runs on a background goroutine.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(path string)
	done     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher starts watching path.
func NewFileWatcher(path string, onChange func(path string)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	fw := &FileWatcher{
		path:     path,
		watcher:  w,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

// Path returns the watched file.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Close stops watching. Pending notifications are dropped.
func (fw *FileWatcher) Close() error {
	close(fw.done)
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

func (fw *FileWatcher) loop() {
	for {
		select {
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				fw.schedule()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Logger().Warn("file watcher", "path", fw.path, "err", err)
		}
	}
}

func (fw *FileWatcher) schedule() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(settleDelay, func() {
		select {
		case <-fw.done:
		default:
			fw.onChange(fw.path)
		}
	})
}
