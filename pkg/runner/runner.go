// Package runner wires the scan → hash → match → link pipeline together.
package runner

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/arthur-debert/linkdup/pkg/hashcache"
	"github.com/arthur-debert/linkdup/pkg/hasher"
	"github.com/arthur-debert/linkdup/pkg/linker"
	"github.com/arthur-debert/linkdup/pkg/logging"
	"github.com/arthur-debert/linkdup/pkg/matcher"
	"github.com/arthur-debert/linkdup/pkg/progress"
	"github.com/arthur-debert/linkdup/pkg/scanner"
)

// Options configures a single run
type Options struct {
	Sources     []string
	Destination string
	Mode        linker.Mode
	Algorithm   hasher.Algorithm

	// FollowSymlinks applies to both trees
	FollowSymlinks bool
	// IgnoreHardlinks excludes multi-linked files from the destination
	// tree; the source tree always keeps them
	IgnoreHardlinks bool

	UseSourceCache      bool
	UseDestinationCache bool

	// ShowProgress enables the running per-file and cumulative progress
	// lines on Out
	ShowProgress bool

	// Out receives progress and summary text; nil silences it
	Out io.Writer
}

// Result summarizes a completed run
type Result struct {
	SourceHashes map[string]string
	DestHashes   map[string]string
	Matches      []matcher.Pair
	MatchedBytes int64
	Linked       int
	Failures     []linker.Failure
}

// Run executes the full pipeline: enumerate both trees, hash them against
// the cache, join the digest maps, and apply the link mode. Processing is
// sequential; the cache sees no concurrent access.
func Run(opts Options, cache *hashcache.Cache) (*Result, error) {
	logger := logging.GetLogger("runner")
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	sourceFiles := scanner.Scan(opts.Sources, scanner.Policy{
		FollowSymlinks: opts.FollowSymlinks,
	})
	destFiles := scanner.Scan([]string{opts.Destination}, scanner.Policy{
		FollowSymlinks:  opts.FollowSymlinks,
		IgnoreHardlinks: opts.IgnoreHardlinks,
	})

	sourceHashes, err := hashTree("Source", sourceFiles, opts, opts.UseSourceCache, cache, out)
	if err != nil {
		return nil, err
	}
	destHashes, err := hashTree("Destination", destFiles, opts, opts.UseDestinationCache, cache, out)
	if err != nil {
		return nil, err
	}

	compareStart := time.Now()
	matches, matchedBytes := matcher.Match(sourceHashes, destHashes)
	for _, pair := range matches {
		fmt.Fprintf(out, "Match found: %.2f GB\n", progress.GB(scanner.SafeSize(pair.Source)))
		fmt.Fprintf(out, "    %q\n", pair.Source)
		fmt.Fprintf(out, "--->%q\n", pair.Dest)
	}
	fmt.Fprintf(out, "Compared %d source files with %d destination files in %.1fs\n",
		len(sourceHashes), len(destHashes), time.Since(compareStart).Seconds())
	fmt.Fprintf(out, "In total %d matches found with a total size of %.2f GB\n",
		len(matches), progress.GB(matchedBytes))

	result := &Result{
		SourceHashes: sourceHashes,
		DestHashes:   destHashes,
		Matches:      matches,
		MatchedBytes: matchedBytes,
	}

	if opts.Mode != linker.ModeDryRun {
		fmt.Fprintf(out, "Creating %ss...\n", opts.Mode.String())
		result.Linked, result.Failures = linker.New(opts.Mode).Apply(matches)
		for _, failure := range result.Failures {
			fmt.Fprintf(out, "Failed to link %q: %v\n", failure.Pair.Dest, failure.Err)
		}
		fmt.Fprintln(out, "Done.")
	}

	logger.Info().
		Int("matches", len(matches)).
		Int64("matchedBytes", matchedBytes).
		Int("linked", result.Linked).
		Int("failures", len(result.Failures)).
		Str("mode", opts.Mode.String()).
		Msg("run complete")

	return result, nil
}

// hashTree resolves a digest for every enumerated file, consulting the
// cache when enabled for this tree, and returns the digest→absolute-path
// map. Within one tree the last path per digest wins.
func hashTree(label string, files []scanner.FileRecord, opts Options, useCache bool, cache *hashcache.Cache, out io.Writer) (map[string]string, error) {
	logger := logging.GetLogger("runner")

	// Size the backlog of files that will actually be hashed, so percent
	// and ETA figures refer to real upcoming work
	var backlog int64
	for _, file := range files {
		if !useCache || !cache.Has(opts.Algorithm, file.Base, file.Size) {
			backlog += scanner.SafeSize(file.Path)
		}
	}
	tracker := progress.NewTracker(backlog)

	hashes := make(map[string]string, len(files))
	for _, file := range files {
		// identity is computed fresh, never trusted from a prior run
		size := scanner.SafeSize(file.Path)

		if useCache {
			if digest, ok := cache.Lookup(opts.Algorithm, file.Base, size); ok {
				if digest != nil {
					hashes[*digest] = absPath(file.Path)
					logger.Debug().Str("path", file.Path).Str("digest", *digest).Msg("cache hit")
				} else {
					logger.Debug().Str("path", file.Path).Msg("cached as unhashable")
				}
				continue
			}
		}

		var onProgress hasher.ProgressFunc
		if opts.ShowProgress {
			onProgress = func(percent int, done, total int64) {
				fmt.Fprintf(out, "\r%q hash progress: %d%%", file.Base, percent)
				if percent == 100 {
					fmt.Fprintln(out)
				}
			}
		}

		fileHash, ok := hasher.HashFile(file.Path, opts.Algorithm, onProgress)

		var digest *string
		if ok {
			d := fileHash.Digest
			digest = &d
			hashes[d] = absPath(file.Path)
			if opts.ShowProgress {
				fmt.Fprintf(out, "Calculating %s hash of %q took %.1fs (%.2f MB/s)\n",
					opts.Algorithm, file.Base, fileHash.Elapsed.Seconds(),
					progress.MBps(fileHash.BytesPerSecond()))
			}
		}

		// write-through: the entry (digest or unhashable marker) is
		// persisted before the next file is touched
		if useCache {
			if err := cache.Store(opts.Algorithm, file.Base, size, digest); err != nil {
				return nil, err
			}
		}

		if snapshot, changed := tracker.Add(size); changed && opts.ShowProgress {
			fmt.Fprintf(out, "%s files hashed so far: %.2f/%.2f GB (%d%%) avg. speed: %.2f MB/s ETA: %s\n",
				label, progress.GB(snapshot.Done), progress.GB(snapshot.Total), snapshot.Percent,
				progress.MBps(snapshot.BytesPerSecond), progress.FormatETA(snapshot.Remaining))
		}
	}

	logger.Info().
		Str("tree", label).
		Int("files", len(files)).
		Int("digests", len(hashes)).
		Bool("cache", useCache).
		Msg("tree hashed")

	return hashes, nil
}

// absPath resolves a path for link creation; on failure the original path
// is kept and the linker will surface the error per pair
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
