package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nathoo/worldnav/types"
)

// Watcher reloads a world when its file changes. A failed reload keeps
// the previous world; only OnLoad installs a new one.
type Watcher struct {
	path  string
	isDir bool
	log   *zap.Logger

	// OnLoad receives every successfully reloaded world.
	OnLoad func(*types.World, []string)
	// OnError receives reload failures.
	OnError func(error)

	mu       sync.Mutex
	fs       *fsnotify.Watcher
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the world at path (a file or a Lua
// directory).
func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     filepath.Clean(path),
		isDir:    info.IsDir(),
		log:      log,
		fs:       fw,
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory so editors that replace the file are noticed.
	dir := w.path
	if !w.isDir {
		dir = filepath.Dir(w.path)
	}
	if err := w.fs.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.log.Info("watching world", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fs.Close(); err != nil {
		w.log.Error("closing world watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.log.Debug("world file event", zap.String("file", event.Name), zap.String("op", event.Op.String()))
				fire = time.After(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("world watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if w.isDir {
		return strings.HasSuffix(event.Name, ".lua")
	}
	return filepath.Clean(event.Name) == w.path
}

func (w *Watcher) reload() {
	world, warnings, err := Load(w.path, w.log)
	if err != nil {
		w.log.Warn("world reload failed; keeping previous world", zap.Error(err))
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}
	w.log.Info("world reloaded", zap.String("path", w.path), zap.Int("entries", len(world.Entries)))
	if w.OnLoad != nil {
		w.OnLoad(world, warnings)
	}
}
