// Package artifact stores failure screenshots.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// ErrEmptyArtifact is returned when there is nothing to save.
var ErrEmptyArtifact = errors.New("empty artifact")

// Store persists a failure artifact for a scenario key and returns where it went.
type Store interface {
	SaveArtifact(ctx context.Context, key string, data []byte) (string, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, key string, data []byte) (string, error)

// SaveArtifact calls f.
func (f StoreFunc) SaveArtifact(ctx context.Context, key string, data []byte) (string, error) {
	return f(ctx, key, data)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Sanitize turns a scenario key into a file name: the readable part replaces key
// separators with "__" and unsafe runs with "_", and the suffix is a hash of the
// raw key so distinct keys never share a file.
func Sanitize(key string) string {
	name := strings.ReplaceAll(key, "/", "__")
	name = unsafeChars.ReplaceAllString(name, "_")

	if name == "" {
		name = "artifact"
	}

	return fmt.Sprintf("%s-%08x", name, uint32(xxhash.Sum64String(key))) //nolint:gosec // truncation is intended
}

// DiskStore writes artifacts to <dir>/<run-id>/<sanitized-key>.png and keeps the
// directory under a size limit by evicting previous runs.
type DiskStore struct {
	log      logrus.FieldLogger
	dir      string
	runID    string
	maxBytes int64
	evictor  Evictor
}

// NewDiskStore creates a disk store. maxBytes <= 0 disables eviction.
func NewDiskStore(log logrus.FieldLogger, dir, runID string, maxBytes int64) *DiskStore {
	return &DiskStore{
		log:      log.WithField("component", "artifact_store"),
		dir:      dir,
		runID:    runID,
		maxBytes: maxBytes,
		evictor:  NewEvictor(dir, log),
	}
}

// Dir returns the directory of the current run.
func (s *DiskStore) Dir() string {
	return filepath.Join(s.dir, s.runID)
}

// SaveArtifact implements Store.
func (s *DiskStore) SaveArtifact(ctx context.Context, key string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyArtifact
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	runDir := s.Dir()
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	path := filepath.Join(runDir, Sanitize(key)+".png")

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return "", fmt.Errorf("finalizing artifact: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"key":  key,
		"path": path,
		"size": len(data),
	}).Debug("saved artifact")

	// Files of the current run are referenced by results, so only older runs
	// are evicted.
	if s.maxBytes > 0 {
		if _, err := s.evictor.Evict(s.maxBytes, runDir); err != nil {
			s.log.WithError(err).Warn("artifact directory over size limit")
		}
	}

	return path, nil
}

var _ Store = (*DiskStore)(nil)
