// Package watch monitors a workspace directory for artifact document saves
// using fsnotify. It is thin glue over the engine: events are debounced and
// handed to the caller, which decides whether to cascade.
package watch

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papercrane/cascade/internal/artifact"
)

// Kind describes the type of file change detected.
type Kind int

const (
	Modified Kind = iota // document edited or created
	Removed              // document deleted
)

// Change represents a detected change in the workspace directory.
type Change struct {
	Kind Kind
	File string // absolute path
}

// Watcher monitors a workspace directory for document changes.
type Watcher struct {
	Dir     string
	Changes <-chan Change // read-only external channel

	changes chan Change // internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// New creates a watcher for the given workspace directory.
func New(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the workspace directory.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: editors fire several events per save; track the last event
	// time per file and emit once the file settles.
	const debounce = 250 * time.Millisecond
	pending := make(map[string]fsnotify.Event)
	last := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				w.drain(pending)
				return
			}
			if !w.isArtifactFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				pending[event.Name] = event
				last[event.Name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, t := range last {
				if now.Sub(t) >= debounce {
					w.emit(file, pending[file])
					delete(pending, file)
					delete(last, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next save retriggers.
		}
	}
}

// isArtifactFile reports whether the path names an <id>.<phase>.md file.
func (w *Watcher) isArtifactFile(name string) bool {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, ".md") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	_, _, ok := artifact.ParseFilename(base)
	return ok
}

func (w *Watcher) emit(file string, ev fsnotify.Event) {
	w.changes <- toChange(file, ev)
}

// drain flushes pending changes on shutdown. Stop's caller has usually
// stopped reading by now, so sends never block; whatever does not fit in the
// buffer is dropped.
func (w *Watcher) drain(pending map[string]fsnotify.Event) {
	for file, ev := range pending {
		select {
		case w.changes <- toChange(file, ev):
		default:
			return
		}
	}
}

func toChange(file string, ev fsnotify.Event) Change {
	kind := Modified
	if ev.Has(fsnotify.Remove) {
		kind = Removed
	}
	return Change{Kind: kind, File: file}
}
