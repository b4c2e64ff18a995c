// Package scanner enumerates the regular files under one or more root
// paths, applying the symlink and hardlink exclusion policy.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/linkdup/pkg/logging"
)

// FileRecord describes one enumerated file. It is recomputed on every run
// and never persisted.
type FileRecord struct {
	Path      string
	Base      string
	Size      int64
	IsSymlink bool
	Nlink     uint64
}

// Policy controls which files are excluded during enumeration
type Policy struct {
	// FollowSymlinks includes files reached through symlinks. Broken
	// symlinks are skipped regardless.
	FollowSymlinks bool

	// IgnoreHardlinks excludes files whose link count is greater than one
	IgnoreHardlinks bool
}

// Scan walks each root (a directory or a single file) and returns every
// regular file that passes the policy. Traversal order is
// filesystem-dependent. Stat failures skip the file, never fail the scan.
func Scan(roots []string, policy Policy) []FileRecord {
	logger := logging.GetLogger("scanner")

	var records []FileRecord
	for _, root := range roots {
		found := scanRoot(root, policy)
		logger.Info().Str("root", root).Int("files", len(found)).Msg("scanned root")
		records = append(records, found...)
	}
	return records
}

func scanRoot(root string, policy Policy) []FileRecord {
	logger := logging.GetLogger("scanner")

	var records []FileRecord
	ignoredSymlinks := 0
	ignoredHardlinks := 0

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("cannot read path, skipping")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		record, ok := examine(path, policy, &ignoredSymlinks, &ignoredHardlinks)
		if ok {
			records = append(records, record)
		}
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		logger.Warn().Err(err).Str("root", root).Msg("walk aborted")
	}

	if ignoredSymlinks > 0 {
		logger.Info().Int("count", ignoredSymlinks).Str("root", root).Msg("ignored symlinks")
	}
	if ignoredHardlinks > 0 {
		logger.Info().Int("count", ignoredHardlinks).Str("root", root).Msg("ignored hardlinks")
	}
	return records
}

// examine applies the policy to a single path and builds its record
func examine(path string, policy Policy, ignoredSymlinks, ignoredHardlinks *int) (FileRecord, bool) {
	logger := logging.GetLogger("scanner")

	linfo, err := os.Lstat(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("lstat failed, skipping")
		return FileRecord{}, false
	}

	isSymlink := linfo.Mode()&os.ModeSymlink != 0
	if isSymlink && !policy.FollowSymlinks {
		*ignoredSymlinks++
		return FileRecord{}, false
	}

	// Stat resolves the target; a failure here means a broken link or a
	// vanished file, both skipped
	info, err := os.Stat(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("unresolvable path, skipping")
		*ignoredSymlinks++
		return FileRecord{}, false
	}
	if !info.Mode().IsRegular() {
		return FileRecord{}, false
	}

	nlink := linkCount(info)
	if policy.IgnoreHardlinks && nlink > 1 {
		*ignoredHardlinks++
		return FileRecord{}, false
	}

	return FileRecord{
		Path:      path,
		Base:      filepath.Base(path),
		Size:      info.Size(),
		IsSymlink: isSymlink,
		Nlink:     nlink,
	}, true
}

// linkCount extracts the hardlink count when the platform exposes it
func linkCount(info os.FileInfo) uint64 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(stat.Nlink)
	}
	return 1
}

// SafeSize returns the file's current size, or zero when it cannot be
// statted. Used for progress totals where a vanished file must not be fatal.
func SafeSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
