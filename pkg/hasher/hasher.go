// Package hasher computes file content digests by streaming files in
// fixed-size chunks, so peak memory stays bounded regardless of file size.
package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"time"

	"github.com/arthur-debert/linkdup/pkg/errors"
	"github.com/arthur-debert/linkdup/pkg/logging"
)

// ChunkSize is the read granularity for streaming hashes
const ChunkSize = 64 * 1024

// Algorithm identifies a supported digest algorithm
type Algorithm string

// Supported algorithms
const (
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
	MD5    Algorithm = "md5"
)

// DefaultAlgorithm is used when no algorithm is selected
const DefaultAlgorithm = SHA1

// ParseAlgorithm converts a string to an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case SHA1, SHA256, SHA512, MD5:
		return Algorithm(s), nil
	case "":
		return DefaultAlgorithm, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown hash algorithm %q", s)
}

// digest returns a fresh hash state for the algorithm
func (a Algorithm) digest() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case SHA512:
		return sha512.New()
	case MD5:
		return md5.New()
	default:
		return sha1.New()
	}
}

// String implements fmt.Stringer
func (a Algorithm) String() string {
	return string(a)
}

// ProgressFunc receives hash progress. It is invoked only when the whole
// percentage changes between consecutive chunks.
type ProgressFunc func(percent int, done, total int64)

// FileHash is the outcome of hashing a single file
type FileHash struct {
	Digest  string
	Size    int64
	Elapsed time.Duration
}

// BytesPerSecond returns the average hashing throughput
func (f FileHash) BytesPerSecond() float64 {
	if f.Elapsed <= 0 {
		return 0
	}
	return float64(f.Size) / f.Elapsed.Seconds()
}

// HashFile streams the file through the algorithm's digest and returns the
// hex-encoded result. The second return value is false when the file cannot
// be hashed: zero or unknown size, or any I/O error mid-read. Unreadable
// files are a per-file condition, never a reason to abort a run.
func HashFile(path string, algo Algorithm, onProgress ProgressFunc) (FileHash, bool) {
	logger := logging.GetLogger("hasher")

	info, err := os.Stat(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cannot stat file, skipping hash")
		return FileHash{}, false
	}
	size := info.Size()
	if size <= 0 {
		logger.Debug().Str("path", path).Msg("empty file, nothing to hash")
		return FileHash{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cannot open file, skipping hash")
		return FileHash{}, false
	}
	defer func() { _ = f.Close() }()

	logger.Info().
		Str("path", path).
		Str("algorithm", algo.String()).
		Int64("size", size).
		Msg("hashing file")

	h := algo.digest()
	buf := make([]byte, ChunkSize)

	var done int64
	lastPercent := -1
	start := time.Now()

	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			done += int64(n)
			if onProgress != nil {
				percent := int(done * 100 / size)
				if percent != lastPercent {
					lastPercent = percent
					onProgress(percent, done, size)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("read error while hashing, skipping file")
			return FileHash{}, false
		}
	}

	result := FileHash{
		Digest:  hex.EncodeToString(h.Sum(nil)),
		Size:    size,
		Elapsed: time.Since(start),
	}

	logger.Info().
		Str("path", path).
		Str("digest", result.Digest).
		Dur("elapsed", result.Elapsed).
		Float64("bytesPerSec", result.BytesPerSecond()).
		Msg("hash complete")

	return result, true
}
