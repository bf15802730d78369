package target

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/seatwatch/seatwatch/internal/errors"
)

// reloadDebounce coalesces the burst of filesystem events an editor or an
// atomic rename produces into one reload.
const reloadDebounce = 250 * time.Millisecond

// Watch reloads the registry whenever the snapshot file changes on disk and
// invokes onReload with the new target count. The registry's own writes are
// recognized by checksum and skipped. Watch blocks until ctx is cancelled.
//
// The parent directory is watched, not the file: every mutation replaces
// the snapshot via rename, which would silently detach a file-level watch.
func (r *Registry) Watch(ctx context.Context, onReload func(targetCount int)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating snapshot watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	base := filepath.Base(r.path)
	var debounce *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.AfterFunc(reloadDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				debounce.Reset(reloadDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("snapshot watcher error", "error", err)

		case <-fire:
			count, changed, err := r.reload()
			if err != nil {
				r.logger.Warn("failed to reload targets snapshot", "path", r.path, "error", err)
				continue
			}
			if !changed {
				continue
			}
			r.logger.Info("targets snapshot reloaded", "targets", count)
			if onReload != nil {
				onReload(count)
			}
		}
	}
}

// reload replaces the in-memory map from disk. It reports whether anything
// actually changed; a read-back of our own last write is not a change.
func (r *Registry) reload() (count int, changed bool, err error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Snapshot deleted out from under us. Keep the in-memory state;
			// the next mutation writes it back.
			return 0, false, nil
		}
		return 0, false, err
	}

	sum := sha256.Sum256(data)

	r.mu.Lock()
	defer r.mu.Unlock()

	if sum == r.lastSum {
		return len(r.targets), false, nil
	}

	var loaded map[string]*Target
	if err := json.Unmarshal(data, &loaded); err != nil {
		return 0, false, fmt.Errorf("%w: %v", errors.ErrSnapshotCorrupted, err)
	}
	if loaded == nil {
		loaded = make(map[string]*Target)
	}

	r.targets = loaded
	r.lastSum = sum
	return len(loaded), true, nil
}
