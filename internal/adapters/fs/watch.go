package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/repokit/internal/ports"
	"github.com/bft-labs/repokit/pkg/log"
)

var _ ports.Watcher = (*Store[struct{}])(nil)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the store whenever its file is written or replaced, then
// calls onChange (which may be nil). It blocks until ctx is done.
func (s *Store[E]) Watch(ctx context.Context, onChange func()) error {
	return s.watch(ctx, DefaultDebounce, onChange)
}

func (s *Store[E]) watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the file's inode.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	reload := func() {
		defer wg.Done()
		if err := s.Reload(); err != nil {
			s.logger.Warn("cache file reload failed", log.String("path", s.path), log.Err(err))
			return
		}
		s.logger.Debug("cache file reloaded", log.String("path", s.path))
		if onChange != nil {
			onChange()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(debounce, reload)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("cache file watcher error", log.Err(err))
		}
	}
}
