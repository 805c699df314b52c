// Package filewatch follows a single selected file on disk.
package filewatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// EventKind classifies what happened to the watched file.
type EventKind int

const (
	Changed EventKind = iota + 1
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// EventMsg is delivered to the program when the watched file changes.
// Token identifies the watch that produced it so stale events can be dropped.
type EventMsg struct {
	Token uint64
	Path  string
	Kind  EventKind
}

// ErrorMsg reports a watcher failure. The watch is finished afterwards.
type ErrorMsg struct {
	Token uint64
	Err   error
}

// Watcher follows one file. The parent directory is watched so that editors
// replacing the file through rename are still seen.
type Watcher struct {
	token   uint64
	path    string
	watcher *fsnotify.Watcher

	closeOnce sync.Once
	closeErr  error
}

// Watch starts following path. The token is echoed on every message.
func Watch(path string, token uint64) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{token: token, path: abs, watcher: fw}, nil
}

// Path returns the absolute path being followed.
func (w *Watcher) Path() string { return w.path }

// Token returns the token echoed on messages.
func (w *Watcher) Token() uint64 { return w.token }

// Next waits for the next event concerning the file. It returns nil once the
// watcher is closed.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				kind := settle(classify(event.Op), w.path)
				if kind == 0 {
					continue
				}
				return EventMsg{Token: w.token, Path: w.path, Kind: kind}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				return ErrorMsg{Token: w.token, Err: err}
			}
		}
	}
}

// Close stops the watch. Safe to call more than once.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}

func classify(op fsnotify.Op) EventKind {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Removed
	case op.Has(fsnotify.Write), op.Has(fsnotify.Create):
		return Changed
	default:
		return 0
	}
}

// settle reports a removal only when the path is really gone. Editors that
// save by renaming the original away leave a new file in its place.
func settle(kind EventKind, path string) EventKind {
	if kind != Removed {
		return kind
	}
	if _, err := os.Stat(path); err == nil {
		return Changed
	}
	return Removed
}
