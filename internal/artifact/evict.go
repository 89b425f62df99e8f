package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Evictor keeps an artifact directory under a size limit.
type Evictor interface {
	// Evict deletes the oldest files until the tree is at most maxBytes. Paths
	// in keep, and files below a kept directory, are never deleted.
	Evict(maxBytes int64, keep ...string) ([]string, error)
	CurrentSize() (int64, error)
}

type evictor struct {
	dir string
	log logrus.FieldLogger
	mu  sync.Mutex
}

type fileEntry struct {
	path    string
	size    int64
	modTime time.Time
}

// byModTime sorts files oldest first.
type byModTime []fileEntry

// NewEvictor creates an evictor for dir.
func NewEvictor(dir string, log logrus.FieldLogger) Evictor {
	return &evictor{
		dir: dir,
		log: log.WithField("component", "artifact_evictor"),
	}
}

func (e *evictor) CurrentSize() (int64, error) {
	entries, err := e.scan()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, f := range entries {
		total += f.size
	}

	return total, nil
}

func (e *evictor) Evict(maxBytes int64, keep ...string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries, err := e.scan()
	if err != nil {
		return nil, err
	}

	var currentSize int64
	for _, f := range entries {
		currentSize += f.size
	}

	if currentSize <= maxBytes {
		return nil, nil
	}

	protected := make([]string, 0, len(keep))
	for _, k := range keep {
		protected = append(protected, filepath.Clean(k))
	}

	sort.Sort(byModTime(entries))

	deleted := make([]string, 0)

	var sizeFreed int64

	for _, f := range entries {
		if currentSize-sizeFreed <= maxBytes {
			break
		}

		if isProtected(f.path, protected) {
			continue
		}

		if err := os.Remove(f.path); err != nil {
			if !os.IsNotExist(err) {
				e.log.WithError(err).WithField("file", f.path).Warn("failed to delete artifact")
				continue
			}
		} else {
			e.log.WithFields(logrus.Fields{
				"file": f.path,
				"size": f.size,
				"age":  time.Since(f.modTime).Round(time.Second),
			}).Debug("evicted artifact")
		}

		deleted = append(deleted, f.path)
		sizeFreed += f.size
	}

	newSize := currentSize - sizeFreed
	e.log.WithFields(logrus.Fields{
		"evicted":  len(deleted),
		"freed":    sizeFreed,
		"new_size": newSize,
	}).Info("artifact eviction complete")

	if newSize > maxBytes {
		return deleted, fmt.Errorf("unable to free enough space: current=%d, max=%d", newSize, maxBytes) //nolint:err113 // Include size values for debugging
	}

	return deleted, nil
}

func isProtected(path string, protected []string) bool {
	for _, p := range protected {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func (e *evictor) scan() ([]fileEntry, error) {
	var entries []fileEntry

	err := filepath.WalkDir(e.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished between listing and stat
		}

		entries = append(entries, fileEntry{
			path:    filepath.Clean(path),
			size:    info.Size(),
			modTime: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", e.dir, err)
	}

	return entries, nil
}

func (b byModTime) Len() int {
	return len(b)
}

func (b byModTime) Less(i, j int) bool {
	return b[i].modTime.Before(b[j].modTime)
}

func (b byModTime) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}
