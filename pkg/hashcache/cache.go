// Package hashcache persists computed file digests between runs.
//
// Entries are keyed by (algorithm, basename, size) and deliberately never
// record a path: the weak identity key keeps cache hits alive across file
// moves and renames. Two unrelated files sharing a basename and size will
// collide on the same entry; disable caching when that matters.
package hashcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/linkdup/pkg/errors"
	"github.com/arthur-debert/linkdup/pkg/hasher"
	"github.com/arthur-debert/linkdup/pkg/logging"
)

// On-disk file names, fixed per installation
const (
	StoreFileName  = "hashes.json"
	BackupFileName = "hashes_backup.json"

	LegacyFileName        = "hashes.gob"
	LegacyRetiredFileName = "hashes_legacy.gob"
)

// EnvCacheDir overrides the cache directory, mainly for tests
const EnvCacheDir = "LINKDUP_CACHE_DIR"

// Store maps an algorithm name to its key→digest sub-map. A nil digest is
// the explicit "previously attempted, unhashable" marker; it persists as
// JSON null.
type Store map[string]map[string]*string

// Key builds the composite weak-identity key for a file
func Key(base string, size int64) string {
	return fmt.Sprintf("%d %s", size, base)
}

// DefaultDir returns the directory holding the cache files
func DefaultDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, "linkdup")
}

// Cache is the owned handle to the persistent hash store. It is loaded once
// at startup and written through after every mutation, so a crash loses at
// most the hash in flight.
type Cache struct {
	dir   string
	store Store
}

// Open loads the store from dir, creating an empty one when no store file
// exists yet. A present legacy file must be migrated first, see Migrate.
func Open(dir string) (*Cache, error) {
	logger := logging.GetLogger("hashcache")

	c := &Cache{dir: dir, store: make(Store)}
	path := filepath.Join(dir, StoreFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug().Str("path", path).Msg("no cache file yet, starting empty")
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCacheLoad, "cannot read cache file %q", path)
	}
	if err := json.Unmarshal(data, &c.store); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCacheLoad, "cannot parse cache file %q", path)
	}

	logger.Info().Int("entries", c.Len()).Str("path", path).Msg("loaded hash cache")
	return c, nil
}

// Len counts the entries across all algorithms
func (c *Cache) Len() int {
	n := 0
	for _, sub := range c.store {
		n += len(sub)
	}
	return n
}

// Lookup reports the cached digest for (algorithm, basename, size). The
// second return value is false for a miss. A nil digest on a hit means a
// prior run already tried and failed to hash this identity.
func (c *Cache) Lookup(algo hasher.Algorithm, base string, size int64) (*string, bool) {
	sub, ok := c.store[algo.String()]
	if !ok {
		return nil, false
	}
	digest, ok := sub[Key(base, size)]
	return digest, ok
}

// Has reports whether an entry exists for (algorithm, basename, size)
func (c *Cache) Has(algo hasher.Algorithm, base string, size int64) bool {
	_, ok := c.Lookup(algo, base, size)
	return ok
}

// Store records a digest (or nil, for unhashable) and synchronously rewrites
// the store file. Write-through persistence guarantees at most one
// un-persisted hash is lost on abrupt termination.
func (c *Cache) Store(algo hasher.Algorithm, base string, size int64, digest *string) error {
	sub, ok := c.store[algo.String()]
	if !ok {
		sub = make(map[string]*string)
		c.store[algo.String()] = sub
	}
	sub[Key(base, size)] = digest
	return c.save()
}

// save rotates any existing store file to the backup name, then writes the
// full store as JSON. Exactly one backup generation is retained.
func (c *Cache) save() error {
	logger := logging.GetLogger("hashcache")

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrCacheSave, "cannot create cache directory %q", c.dir)
	}

	path := filepath.Join(c.dir, StoreFileName)
	backup := filepath.Join(c.dir, BackupFileName)

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrCacheSave, "cannot rotate backup %q", backup)
		}
		if err := os.Rename(path, backup); err != nil {
			return errors.Wrapf(err, errors.ErrCacheSave, "cannot back up cache file %q", path)
		}
	}

	data, err := json.Marshal(c.store)
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheSave, "cannot encode hash store")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrCacheSave, "cannot write cache file %q", path)
	}

	logger.Debug().Str("path", path).Int("entries", c.Len()).Msg("saved hash cache")
	return nil
}
