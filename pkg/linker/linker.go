// Package linker replaces duplicate destination files with links pointing
// at their source counterparts.
package linker

import (
	"path/filepath"

	"github.com/arthur-debert/linkdup/pkg/errors"
	"github.com/arthur-debert/linkdup/pkg/logging"
	"github.com/arthur-debert/linkdup/pkg/matcher"
)

// Mode selects what happens to confirmed matches
type Mode int

const (
	// ModeDryRun reports matches without touching the filesystem
	ModeDryRun Mode = iota
	// ModeSymlink replaces each destination file with a symbolic link
	ModeSymlink
	// ModeHardlink replaces each destination file with a hard link
	ModeHardlink
)

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case ModeSymlink:
		return "symlink"
	case ModeHardlink:
		return "hardlink"
	default:
		return "dry-run"
	}
}

// ParseMode maps the two link flags to a mode. Requesting both at once is a
// configuration conflict and fatal before anything is enumerated.
func ParseMode(symlink, hardlink bool) (Mode, error) {
	switch {
	case symlink && hardlink:
		return ModeDryRun, errors.New(errors.ErrConfigConflict,
			"cannot create soft- and hardlinks at the same time; choose one")
	case symlink:
		return ModeSymlink, nil
	case hardlink:
		return ModeHardlink, nil
	default:
		return ModeDryRun, nil
	}
}

// Failure records one pair that could not be linked. The batch continues
// past failures; already-linked pairs are never rolled back.
type Failure struct {
	Pair matcher.Pair
	Err  error
}

// Linker executes the unlink+relink step for each match
type Linker struct {
	fs   FS
	mode Mode
}

// New creates a Linker operating on the real filesystem
func New(mode Mode) *Linker {
	return NewWithFS(mode, NewOSFS())
}

// NewWithFS creates a Linker with an injected filesystem, for tests
func NewWithFS(mode Mode, fs FS) *Linker {
	return &Linker{fs: fs, mode: mode}
}

// Mode returns the configured link mode
func (l *Linker) Mode() Mode {
	return l.mode
}

// Apply processes each match in order: resolve the source to an absolute
// path, remove the destination, create the link. Each pair is handled
// independently; a failure is recorded and the remaining pairs still run.
// In dry-run mode Apply touches nothing and reports zero linked pairs.
func (l *Linker) Apply(pairs []matcher.Pair) (int, []Failure) {
	logger := logging.GetLogger("linker")

	if l.mode == ModeDryRun {
		logger.Debug().Int("matches", len(pairs)).Msg("dry-run, no links created")
		return 0, nil
	}

	linked := 0
	var failures []Failure

	for _, pair := range pairs {
		if err := l.applyOne(pair); err != nil {
			logger.Warn().Err(err).
				Str("source", pair.Source).
				Str("dest", pair.Dest).
				Msg("link failed, continuing with remaining matches")
			failures = append(failures, Failure{Pair: pair, Err: err})
			continue
		}
		linked++
		logger.Info().
			Str("source", pair.Source).
			Str("dest", pair.Dest).
			Str("mode", l.mode.String()).
			Msg("replaced destination with link")
	}

	return linked, failures
}

func (l *Linker) applyOne(pair matcher.Pair) error {
	// Symlinks must not depend on the process working directory
	source, err := filepath.Abs(pair.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkResolve, "cannot resolve %q", pair.Source)
	}

	if err := l.fs.Remove(pair.Dest); err != nil {
		return errors.Wrapf(err, errors.ErrUnlink, "cannot remove %q", pair.Dest)
	}

	switch l.mode {
	case ModeSymlink:
		err = l.fs.Symlink(source, pair.Dest)
	case ModeHardlink:
		err = l.fs.Link(source, pair.Dest)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate,
			"cannot create %s %q", l.mode.String(), pair.Dest)
	}
	return nil
}
