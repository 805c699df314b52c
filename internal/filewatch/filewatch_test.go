package filewatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func waitForMsg(t *testing.T, w *Watcher) any {
	t.Helper()
	result := make(chan any, 1)
	go func() { result <- w.Next()() }()
	select {
	case msg := <-result:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return nil
	}
}

func TestWatchReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaf.png")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := Watch(path, 7)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(filepath.Join(dir, "other.png"), []byte("b"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	msg, ok := waitForMsg(t, w).(EventMsg)
	if !ok {
		t.Fatalf("expected EventMsg, got %T", msg)
	}
	if msg.Token != 7 || msg.Kind != Removed {
		t.Fatalf("unexpected event %+v", msg)
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaf.png")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := Watch(path, 1)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(path, []byte("updated"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	msg, ok := waitForMsg(t, w).(EventMsg)
	if !ok || msg.Kind != Changed {
		t.Fatalf("expected change event, got %#v", msg)
	}
}

func TestCloseEndsNext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaf.png")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := Watch(path, 1)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if msg := waitForMsg(t, w); msg != nil {
		t.Fatalf("expected nil after close, got %#v", msg)
	}
}

func TestClassify(t *testing.T) {
	tests := map[fsnotify.Op]EventKind{
		fsnotify.Write:  Changed,
		fsnotify.Create: Changed,
		fsnotify.Remove: Removed,
		fsnotify.Rename: Removed,
		fsnotify.Chmod:  0,
	}
	for op, want := range tests {
		if got := classify(op); got != want {
			t.Errorf("classify(%v) = %v, want %v", op, got, want)
		}
	}
}

func TestSettleKeepsReplacedFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "leaf.png")
	if err := os.WriteFile(present, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	missing := filepath.Join(dir, "gone.png")

	tests := []struct {
		name string
		kind EventKind
		path string
		want EventKind
	}{
		{name: "rename with file back in place", kind: Removed, path: present, want: Changed},
		{name: "rename with file gone", kind: Removed, path: missing, want: Removed},
		{name: "write passes through", kind: Changed, path: missing, want: Changed},
		{name: "ignored op stays ignored", kind: 0, path: present, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := settle(tt.kind, tt.path); got != tt.want {
				t.Fatalf("settle(%v) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestWatchReportsRenameOverAsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaf.png")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := Watch(path, 2)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	tmp := filepath.Join(dir, "leaf.png.tmp")
	if err := os.WriteFile(tmp, []byte("saved"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
	msg, ok := waitForMsg(t, w).(EventMsg)
	if !ok || msg.Kind != Changed {
		t.Fatalf("expected change event, got %#v", msg)
	}
}
