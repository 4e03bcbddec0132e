package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
)

// cacheEntry is the on-disk form of a cached packument.
type cacheEntry struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Packument Packument `json:"packument"`
}

// metadataCache keeps packuments on disk, one file per package.
type metadataCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func newMetadataCache(dir string, ttl time.Duration) *metadataCache {
	return &metadataCache{dir: filepath.Clean(dir), ttl: ttl, now: time.Now}
}

func (c *metadataCache) path(name string) string {
	return filepath.Join(c.dir, strconv.FormatUint(xxhash.Sum64String(name), 16)+".json")
}

// get returns a fresh cached packument. Misses, stale and unreadable entries all report false.
func (c *metadataCache) get(name string) (*Packument, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(c.path(name))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Name != name {
		return nil, false
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		return nil, false
	}
	return &entry.Packument, true
}

// put stores p atomically.
func (c *metadataCache) put(name string, p *Packument) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cacheEntry{Name: name, Timestamp: c.now(), Packument: *p})
	if err != nil {
		return zerr.Wrap(err, "failed to encode registry cache entry")
	}
	return atomicWriteFile(c.path(name), data)
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "registry-cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// invalidate drops the cached entry for name.
func (c *metadataCache) invalidate(name string) {
	_ = os.Remove(c.path(name))
}
