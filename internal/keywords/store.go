package keywords

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
)

// debounce collapses editor write bursts into one reload.
const debounce = 250 * time.Millisecond

// Store serves the current keyword matcher and reloads it when the
// backing file changes. When no file is configured it serves the
// built-in defaults and Watch is a no-op.
type Store struct {
	path string
	log  *logger.Logger

	mu      sync.RWMutex
	matcher *Matcher

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// NewStore builds a store. path may be empty to use the defaults.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	s := &Store{path: path, log: log, done: make(chan struct{})}

	tables := DefaultTables()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}
	matcher, err := NewMatcher(tables)
	if err != nil {
		return nil, err
	}
	s.matcher = matcher
	return s, nil
}

// Matcher returns the current matcher. Safe for concurrent use; the
// returned matcher is immutable.
func (s *Store) Matcher() *Matcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matcher
}

// Reload re-reads the keyword file and swaps the matcher. A broken
// file leaves the previous matcher in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	tables, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	matcher, err := NewMatcher(tables)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.matcher = matcher
	s.mu.Unlock()
	s.log.Info("keyword tables reloaded", "path", s.path)
	return nil
}

// Watch reloads the tables whenever the file changes, until the
// context is canceled or Close is called. Watching the parent
// directory survives the rename-and-replace pattern editors use.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = w

	go s.watchLoop(ctx)
	return nil
}

func (s *Store) watchLoop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("keyword watcher error", "error", err)
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				s.log.Warn("keyword reload failed, keeping previous tables", "error", err)
			}
		}
	}
}

// Close stops the watcher.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.done) })
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
