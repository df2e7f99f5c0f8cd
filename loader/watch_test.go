package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/nathoo/worldnav/types"
)

func writeWorld(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "world.json")
	writeWorld(t, path, `{"entries": {"0": {"key": ["Fort"], "location": [1, 1]}}}`)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.debounce = 20 * time.Millisecond

	loaded := make(chan *types.World, 4)
	failed := make(chan error, 4)
	w.OnLoad = func(world *types.World, _ []string) { loaded <- world }
	w.OnError = func(err error) { failed <- err }

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeWorld(t, path, `{"entries": {"0": {"key": ["Keep"], "location": [2, 2]}}}`)
	select {
	case world := <-loaded:
		if len(world.Entries) != 1 || world.Entries[0].Name != "Keep" {
			t.Errorf("unexpected reloaded world %+v", world.Entries)
		}
	case err := <-failed:
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	writeWorld(t, path, `{"nothing": {}}`)
	select {
	case err := <-failed:
		if err == nil {
			t.Error("expected an import error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload failure")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "world.json")
	writeWorld(t, path, `{"entries": {}}`)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	calls := make(chan struct{}, 4)
	w.OnLoad = func(*types.World, []string) { calls <- struct{}{} }
	w.OnError = func(error) { calls <- struct{}{} }

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	writeWorld(t, filepath.Join(dir, "notes.txt"), "unrelated")
	select {
	case <-calls:
		t.Error("expected no reload for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	w.Stop()
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "world.json")
	writeWorld(t, path, `{"entries": {}}`)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.Stop()
}

func TestNewWatcher_MissingPath(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope.json"), nil); err == nil {
		t.Error("expected error for missing world")
	}
}
