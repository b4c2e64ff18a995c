package cli

// Message constants
const (
	MsgShort = "Replace duplicate files with links to their source copies"
	MsgLong  = `linkdup finds files in a destination tree that are byte-identical to files
in one or more source trees, then replaces each duplicate destination file
with a symbolic or hard link to its source counterpart.

Content identity is established by hashing; digests are cached between runs
keyed on filename and size, which makes repeat executions fast but means two
different files sharing a name and size will collide on the same cache
entry. Disable caching with --no-cache if that is a concern.

Without --symlink or --hardlink the run is a dry-run: matches are reported
and nothing on disk changes.`

	MsgExample = `  # Dry-run: report duplicates of ~/originals found under /mnt/backup
  linkdup ~/originals /mnt/backup

  # Replace duplicates with symlinks, several source trees
  linkdup --symlink ~/photos ~/videos /mnt/backup

  # Hardlinks, sha256, no caching
  linkdup --hardlink --sha256 --no-cache ~/originals /mnt/backup`

	MsgMigrationPrompt = "Unmigrated legacy cache found. Do you wish to migrate it?"

	MsgDryRunEpilogue = `Dry-run done.
If you are happy with the dry-run use
  --symlink    to create symlinks
  --hardlink   to create hardlinks`
)
