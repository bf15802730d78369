package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/seatwatch/seatwatch/internal/errors"
)

// ArtifactStore writes diagnostic artifacts (screenshots, page dumps) under a
// root directory, one subdirectory per target.
type ArtifactStore struct {
	root string
	seq  atomic.Uint64
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{root: dir}
}

// Root returns the store's root directory.
func (s *ArtifactStore) Root() string {
	return s.root
}

// Save writes data as an artifact for the given target and returns a
// reference to it. The label becomes part of the filename, prefixed with a
// timestamp so repeated captures of the same label never collide.
func (s *ArtifactStore) Save(targetID, label string, ext string, data []byte) (ArtifactRef, error) {
	now := time.Now()

	dir := filepath.Join(s.root, targetID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ArtifactRef{}, errors.NewPersistenceError("failed to create artifact directory", err).WithPath(dir)
	}

	// Sequence number keeps back-to-back captures of the same label from
	// colliding within one timestamp tick.
	name := fmt.Sprintf("%s_%03d_%s.%s", now.Format("20060102T150405"), s.seq.Add(1)%1000, label, ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return ArtifactRef{}, errors.NewPersistenceError("failed to write artifact", err).WithPath(path)
	}

	return ArtifactRef{Label: label, Path: path, CapturedAt: now}, nil
}
