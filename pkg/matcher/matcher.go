// Package matcher joins the source and destination digest maps into the
// set of byte-identical file pairs.
package matcher

import (
	"github.com/arthur-debert/linkdup/pkg/logging"
	"github.com/arthur-debert/linkdup/pkg/scanner"
)

// Pair is one confirmed duplicate: the destination file carries the same
// digest as the source file under the same algorithm. Digest equality is
// treated as content equality; the residual collision risk of the chosen
// hash is accepted.
type Pair struct {
	Source string
	Dest   string
}

// Match returns every pair whose destination digest equals a source digest,
// plus the total size of the matched source files. Each input map holds one
// path per digest: when several files inside one tree hash identically only
// the last-processed path survives, and callers must tolerate that loss.
// Output ordering follows map iteration and is not guaranteed.
func Match(source, dest map[string]string) ([]Pair, int64) {
	logger := logging.GetLogger("matcher")

	var pairs []Pair
	var totalBytes int64

	for digest, destPath := range dest {
		sourcePath, ok := source[digest]
		if !ok {
			continue
		}
		size := scanner.SafeSize(sourcePath)
		totalBytes += size
		logger.Debug().
			Str("source", sourcePath).
			Str("dest", destPath).
			Int64("size", size).
			Msg("match found")
		pairs = append(pairs, Pair{Source: sourcePath, Dest: destPath})
	}

	logger.Info().
		Int("sourceFiles", len(source)).
		Int("destFiles", len(dest)).
		Int("matches", len(pairs)).
		Int64("totalBytes", totalBytes).
		Msg("comparison complete")

	return pairs, totalBytes
}
