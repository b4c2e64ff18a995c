package hashcache

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/arthur-debert/linkdup/pkg/errors"
	"github.com/arthur-debert/linkdup/pkg/hasher"
	"github.com/arthur-debert/linkdup/pkg/logging"
)

// LegacyKey is the composite key of the retired gob store. The legacy format
// predates algorithm selection, so every legacy digest is implicitly sha1.
type LegacyKey struct {
	Base string
	Size int64
}

// MigrationResult describes the outcome of the startup migration phase
type MigrationResult int

const (
	// MigrationNone means there was nothing to migrate
	MigrationNone MigrationResult = iota
	// Migrated means the legacy store was converted and retired
	Migrated
	// MigrationDeclined means the operator refused; the run cannot proceed
	MigrationDeclined
)

// ConsentFunc asks the operator whether to migrate. Separated out so the
// core migration logic stays testable without an interactive terminal.
type ConsentFunc func() (bool, error)

// Migrate converts a legacy gob store in dir to the current JSON format.
// It runs only when the current-format file is absent and the legacy file is
// present, asks for consent exactly once, and on success renames the legacy
// file so migration never re-triggers. Declining is fatal to the caller:
// support for the legacy format has been dropped.
func Migrate(dir string, consent ConsentFunc) (MigrationResult, error) {
	logger := logging.GetLogger("hashcache")

	currentPath := filepath.Join(dir, StoreFileName)
	legacyPath := filepath.Join(dir, LegacyFileName)

	if _, err := os.Stat(currentPath); err == nil {
		return MigrationNone, nil
	}
	if _, err := os.Stat(legacyPath); err != nil {
		return MigrationNone, nil
	}

	ok, err := consent()
	if err != nil {
		return MigrationDeclined, errors.Wrap(err, errors.ErrCacheMigrate, "migration prompt failed")
	}
	if !ok {
		return MigrationDeclined, errors.New(errors.ErrCacheDeclined,
			"support for the old cache format has been dropped; migration is necessary")
	}

	legacy, err := loadLegacy(legacyPath)
	if err != nil {
		return MigrationDeclined, err
	}

	converted := make(map[string]*string, len(legacy))
	for key, digest := range legacy {
		converted[Key(key.Base, key.Size)] = digest
	}

	cache := &Cache{
		dir:   dir,
		store: Store{hasher.SHA1.String(): converted},
	}
	if err := cache.save(); err != nil {
		return MigrationDeclined, err
	}

	retired := filepath.Join(dir, LegacyRetiredFileName)
	if err := os.Rename(legacyPath, retired); err != nil {
		// roll back the saved store so the next run re-triggers the
		// migration instead of stranding the legacy file forever
		_ = os.Remove(currentPath)
		return MigrationDeclined, errors.Wrapf(err, errors.ErrCacheMigrate,
			"cannot retire legacy cache file %q", legacyPath)
	}

	logger.Info().
		Int("entries", len(converted)).
		Str("retired", retired).
		Msg("migrated legacy hash cache")
	return Migrated, nil
}

// loadLegacy decodes the retired gob format: a single map keyed by
// (basename, size) with nullable digests
func loadLegacy(path string) (map[LegacyKey]*string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCacheMigrate, "cannot open legacy cache file %q", path)
	}
	defer func() { _ = f.Close() }()

	var data map[LegacyKey]*string
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCacheMigrate, "cannot decode legacy cache file %q", path)
	}
	return data, nil
}

// WriteLegacy encodes a legacy-format store. Kept for tests and for tooling
// that needs to fabricate a pre-migration state.
func WriteLegacy(path string, data map[LegacyKey]*string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCacheSave, "cannot create legacy cache file %q", path)
	}
	defer func() { _ = f.Close() }()

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		return errors.Wrap(err, errors.ErrCacheSave, "cannot encode legacy cache")
	}
	return nil
}
