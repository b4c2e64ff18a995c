package hasher

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Algorithm
		wantErr bool
	}{
		{name: "sha1", input: "sha1", want: SHA1},
		{name: "sha256", input: "sha256", want: SHA256},
		{name: "sha512", input: "sha512", want: SHA512},
		{name: "md5", input: "md5", want: MD5},
		{name: "empty_defaults_to_sha1", input: "", want: SHA1},
		{name: "unknown", input: "crc32", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashFileKnownDigest(t *testing.T) {
	dir := t.TempDir()
	content := []byte("1234567890")
	path := writeFile(t, dir, "a.txt", content)

	sha1Sum := sha1.Sum(content)
	sha256Sum := sha256.Sum256(content)

	result, ok := HashFile(path, SHA1, nil)
	require.True(t, ok)
	assert.Equal(t, hex.EncodeToString(sha1Sum[:]), result.Digest)
	assert.Equal(t, int64(10), result.Size)

	result, ok = HashFile(path, SHA256, nil)
	require.True(t, ok)
	assert.Equal(t, hex.EncodeToString(sha256Sum[:]), result.Digest)
}

func TestHashFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", make([]byte, 3*ChunkSize+17))

	first, ok := HashFile(path, SHA1, nil)
	require.True(t, ok)
	second, ok := HashFile(path, SHA1, nil)
	require.True(t, ok)

	assert.Equal(t, first.Digest, second.Digest)
}

func TestHashFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", nil)

	_, ok := HashFile(path, SHA1, nil)
	assert.False(t, ok, "zero-length files must never yield a digest")
}

func TestHashFileMissing(t *testing.T) {
	_, ok := HashFile(filepath.Join(t.TempDir(), "nope.txt"), SHA1, nil)
	assert.False(t, ok, "a vanished file must not abort the run")
}

func TestHashFileProgressWholePercentOnly(t *testing.T) {
	dir := t.TempDir()
	// 200 chunks, so consecutive chunks land on distinct whole percents
	// only part of the time
	path := writeFile(t, dir, "big.bin", make([]byte, 200*ChunkSize))

	var percents []int
	_, ok := HashFile(path, SHA1, func(percent int, done, total int64) {
		percents = append(percents, percent)
	})
	require.True(t, ok)

	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.Greater(t, percents[i], percents[i-1], "progress must be strictly increasing whole percents")
	}
}
