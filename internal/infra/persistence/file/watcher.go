package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dwellingcore/pkg/domain"
)

// Reload is emitted after the session file changed on disk.
type Reload struct {
	Document domain.Document
	Removed  bool
	Err      error
}

// Watcher monitors the session file using fsnotify. The parent directory is
// watched so atomic renames are observed.
type Watcher struct {
	Changes <-chan Reload

	store    *Store
	changes  chan Reload
	done     chan struct{}
	stop     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a watcher for the store's file.
func (s *Store) NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan Reload, 16)
	return &Watcher{
		Changes:  ch,
		store:    s,
		changes:  ch,
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching. When the directory cannot be watched the underlying
// watcher is released and Stop only closes Changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.store.path)); err != nil {
		_ = w.watcher.Close()
		close(w.done)
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	close(w.stop)
	_ = w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.store.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.emit()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) emit() {
	var r Reload
	if _, err := os.Stat(w.store.path); errors.Is(err, os.ErrNotExist) {
		r = Reload{Document: domain.NewDocument(), Removed: true}
	} else {
		doc, err := w.store.Load(context.Background())
		r = Reload{Document: doc, Err: err}
	}
	// A reader that stopped draining Changes must not wedge Stop.
	select {
	case w.changes <- r:
	case <-w.stop:
	}
}
