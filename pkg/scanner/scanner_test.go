package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func paths(records []FileRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path)
	}
	sort.Strings(out)
	return out
}

func TestScanRecursive(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.txt"), "aaa")
	mustWrite(t, filepath.Join(dir, "sub", "b.txt"), "bbbb")
	mustWrite(t, filepath.Join(dir, "sub", "deeper", "c.txt"), "c")

	records := Scan([]string{dir}, Policy{})

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
		filepath.Join(dir, "sub", "deeper", "c.txt"),
	}, paths(records))

	for _, r := range records {
		assert.Equal(t, filepath.Base(r.Path), r.Base)
		assert.Greater(t, r.Size, int64(0))
	}
}

func TestScanSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "only.txt")
	mustWrite(t, file, "content")

	records := Scan([]string{file}, Policy{})

	require.Len(t, records, 1)
	assert.Equal(t, file, records[0].Path)
	assert.Equal(t, int64(7), records[0].Size)
}

func TestScanMultipleRoots(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	mustWrite(t, filepath.Join(dir1, "one.txt"), "1")
	mustWrite(t, filepath.Join(dir2, "two.txt"), "2")

	records := Scan([]string{dir1, dir2}, Policy{})
	assert.Len(t, records, 2)
}

func TestScanSymlinkPolicy(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	mustWrite(t, target, "real")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	t.Run("excluded by default", func(t *testing.T) {
		records := Scan([]string{dir}, Policy{})
		assert.Equal(t, []string{target}, paths(records))
	})

	t.Run("included when following", func(t *testing.T) {
		records := Scan([]string{dir}, Policy{FollowSymlinks: true})
		assert.Equal(t, []string{link, target}, paths(records))
	})
}

func TestScanBrokenSymlinkAlwaysSkipped(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "kept.txt"), "kept")
	broken := filepath.Join(dir, "broken.txt")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.txt"), broken))

	records := Scan([]string{dir}, Policy{FollowSymlinks: true})
	assert.Equal(t, []string{filepath.Join(dir, "kept.txt")}, paths(records))
}

func TestScanHardlinkPolicy(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "orig.txt")
	mustWrite(t, original, "shared")
	hard := filepath.Join(dir, "hard.txt")
	require.NoError(t, os.Link(original, hard))
	mustWrite(t, filepath.Join(dir, "solo.txt"), "solo")

	t.Run("hardlinks kept by default", func(t *testing.T) {
		records := Scan([]string{dir}, Policy{})
		assert.Len(t, records, 3)
	})

	t.Run("hardlinks excluded when ignoring", func(t *testing.T) {
		records := Scan([]string{dir}, Policy{IgnoreHardlinks: true})
		assert.Equal(t, []string{filepath.Join(dir, "solo.txt")}, paths(records))
	})
}

func TestScanMissingRoot(t *testing.T) {
	records := Scan([]string{filepath.Join(t.TempDir(), "nope")}, Policy{})
	assert.Empty(t, records)
}

func TestSafeSize(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sized.txt")
	mustWrite(t, file, "12345")

	assert.Equal(t, int64(5), SafeSize(file))
	assert.Equal(t, int64(0), SafeSize(filepath.Join(dir, "missing.txt")))
}
