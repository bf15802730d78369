package target

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/logging"
)

// Registry is the durable mapping of target ID to target record. All reads
// return clones; all writes go through the registry and rewrite the snapshot
// atomically. One mutex serializes mutation and persistence, since a save is
// a full-snapshot rewrite, not an append.
type Registry struct {
	path   string
	logger *logging.Logger

	mu      sync.Mutex
	targets map[string]*Target
	// lastSum is the checksum of the snapshot as last written or loaded,
	// used by Watch to tell external edits from our own writes.
	lastSum [sha256.Size]byte
}

// NewRegistry opens the registry backed by the snapshot at path. A missing
// snapshot is an empty registry; a snapshot that exists but cannot be
// decoded is an error, never silently discarded.
func NewRegistry(path string, logger *logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	r := &Registry{
		path:    path,
		logger:  logger,
		targets: make(map[string]*Target),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading targets snapshot %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &r.targets); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, errors.ErrSnapshotCorrupted, err)
	}
	if r.targets == nil {
		r.targets = make(map[string]*Target)
	}
	r.lastSum = sha256.Sum256(data)
	return r, nil
}

// Path returns the snapshot location.
func (r *Registry) Path() string {
	return r.path
}

// Add registers a new target and persists the snapshot.
func (r *Registry) Add(t *Target) error {
	if t.ID == "" {
		return fmt.Errorf("%w: target ID must not be empty", errors.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[t.ID]; exists {
		return fmt.Errorf("target %s: %w", t.ID, errors.ErrTargetExists)
	}
	r.targets[t.ID] = t.Clone()

	if err := r.save(); err != nil {
		delete(r.targets, t.ID)
		return err
	}
	return nil
}

// Remove deletes a target and persists the snapshot.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.targets[id]
	if !exists {
		return fmt.Errorf("target %s: %w", id, errors.ErrTargetNotFound)
	}
	delete(r.targets, id)

	if err := r.save(); err != nil {
		r.targets[id] = t
		return err
	}
	return nil
}

// Get returns a clone of the target with the given ID.
func (r *Registry) Get(id string) (*Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.targets[id]
	if !exists {
		return nil, fmt.Errorf("target %s: %w", id, errors.ErrTargetNotFound)
	}
	return t.Clone(), nil
}

// List returns clones of every registered target, ordered by ID.
func (r *Registry) List() []*Target {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Enabled returns clones of the targets with tracking turned on, ordered by
// ID. This is the set the scheduler watches.
func (r *Registry) Enabled() []*Target {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Target, 0, len(r.targets))
	for _, t := range r.targets {
		if t.TrackingEnabled {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

// UpdateStatus applies fn to a working copy of the target's status and, if
// fn completes, replaces the stored status as a unit and persists. This is
// the only mutation path for probe-derived state.
func (r *Registry) UpdateStatus(id string, fn func(*Status)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.targets[id]
	if !exists {
		return fmt.Errorf("target %s: %w", id, errors.ErrTargetNotFound)
	}

	status := t.Status.clone()
	fn(&status)
	t.Status = status

	return r.save()
}

// SetTracking flips the tracking flag and persists the snapshot.
func (r *Registry) SetTracking(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.targets[id]
	if !exists {
		return fmt.Errorf("target %s: %w", id, errors.ErrTargetNotFound)
	}
	if t.TrackingEnabled == enabled {
		return nil
	}
	t.TrackingEnabled = enabled

	if err := r.save(); err != nil {
		t.TrackingEnabled = !enabled
		return err
	}
	return nil
}

// save rewrites the snapshot. Callers hold r.mu. A failed write is retried
// once immediately; a second failure surfaces as a PersistenceError for this
// mutation only — the registry and the monitoring loop keep running.
func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.targets, "", "  ")
	if err != nil {
		return errors.NewPersistenceError("failed to encode targets snapshot", err).WithPath(r.path)
	}

	if err := r.writeSnapshot(data); err != nil {
		r.logger.Warn("snapshot write failed, retrying once", "path", r.path, "error", err)
		if err := r.writeSnapshot(data); err != nil {
			return errors.NewPersistenceError("failed to write targets snapshot", err).WithPath(r.path)
		}
	}

	r.lastSum = sha256.Sum256(data)
	return nil
}

// writeSnapshot performs one atomic write: temp file in the same directory,
// then rename over the snapshot.
func (r *Registry) writeSnapshot(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
