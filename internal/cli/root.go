package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/linkdup/internal/cli/prompt"
	"github.com/arthur-debert/linkdup/internal/version"
	"github.com/arthur-debert/linkdup/pkg/config"
	"github.com/arthur-debert/linkdup/pkg/hashcache"
	"github.com/arthur-debert/linkdup/pkg/hasher"
	"github.com/arthur-debert/linkdup/pkg/linker"
	"github.com/arthur-debert/linkdup/pkg/logging"
	"github.com/arthur-debert/linkdup/pkg/runner"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootFlags holds every flag value for one invocation
type rootFlags struct {
	verbosity int

	symlink  bool
	hardlink bool

	followSymlinks     bool
	dontIgnoreHardlink bool

	noCache            bool
	noSourceCache      bool
	noDestinationCache bool

	printHashes bool

	sha1   bool
	sha256 bool
	sha512 bool
	md5    bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "linkdup [flags] SOURCE... DEST",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.MinimumNArgs(2),
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.Flags().BoolVar(&flags.symlink, "symlink", false, "Replace duplicates with symlinks (default is a dry-run)")
	rootCmd.Flags().BoolVar(&flags.hardlink, "hardlink", false, "Replace duplicates with hardlinks (default is a dry-run)")
	rootCmd.MarkFlagsMutuallyExclusive("symlink", "hardlink")

	rootCmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "Follow symlinks while scanning; can cause redundant work")
	rootCmd.Flags().BoolVar(&flags.dontIgnoreHardlink, "dont-ignore-hardlinks", false, "Also consider destination files that already have multiple hardlinks")

	rootCmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Disable the filename+filesize hash cache for both trees")
	rootCmd.Flags().BoolVar(&flags.noSourceCache, "no-source-cache", false, "Disable the hash cache for the source tree(s)")
	rootCmd.Flags().BoolVar(&flags.noDestinationCache, "no-destination-cache", false, "Disable the hash cache for the destination tree")

	rootCmd.Flags().BoolVar(&flags.printHashes, "print-hashes", false, "Print every file with its digest and size, for debugging")

	rootCmd.Flags().BoolVar(&flags.sha1, "sha1", false, "Use sha1 digests (default)")
	rootCmd.Flags().BoolVar(&flags.sha256, "sha256", false, "Use sha256 digests")
	rootCmd.Flags().BoolVar(&flags.sha512, "sha512", false, "Use sha512 digests")
	rootCmd.Flags().BoolVar(&flags.md5, "md5", false, "Use md5 digests")
	rootCmd.MarkFlagsMutuallyExclusive("sha1", "sha256", "sha512", "md5")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func run(flags *rootFlags, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// logging was set up from the -v count before the config file was
	// available; a configured default only applies when no flag was given
	if v := effectiveVerbosity(flags.verbosity, cfg.Verbosity); v != flags.verbosity {
		logging.SetupLogger(v)
	}

	opts, err := buildOptions(flags, args, cfg)
	if err != nil {
		return err
	}

	cacheDir := hashcache.DefaultDir()
	if _, err := hashcache.Migrate(cacheDir, func() (bool, error) {
		return prompt.Confirm(MsgMigrationPrompt, false)
	}); err != nil {
		return err
	}

	cache, err := hashcache.Open(cacheDir)
	if err != nil {
		return err
	}

	printBanner(opts)

	result, err := runner.Run(opts, cache)
	if err != nil {
		return err
	}

	if flags.printHashes {
		printHashTable("Source files", result.SourceHashes)
		printHashTable("Destination files", result.DestHashes)
	}

	if opts.Mode == linker.ModeDryRun {
		pterm.Println(MsgDryRunEpilogue)
	}

	return nil
}

// effectiveVerbosity prefers the -v flag count over the config file value
func effectiveVerbosity(flagCount, configured int) int {
	if flagCount > 0 {
		return flagCount
	}
	return configured
}

// buildOptions merges flags over config-file defaults into runner options
func buildOptions(flags *rootFlags, args []string, cfg config.Config) (runner.Options, error) {
	mode, err := linker.ParseMode(flags.symlink, flags.hardlink)
	if err != nil {
		return runner.Options{}, err
	}

	algoName := cfg.Algorithm
	switch {
	case flags.sha1:
		algoName = "sha1"
	case flags.sha256:
		algoName = "sha256"
	case flags.sha512:
		algoName = "sha512"
	case flags.md5:
		algoName = "md5"
	}
	algo, err := hasher.ParseAlgorithm(algoName)
	if err != nil {
		return runner.Options{}, err
	}

	cacheEnabled := cfg.Cache.Enabled && !flags.noCache

	return runner.Options{
		Sources:             args[:len(args)-1],
		Destination:         args[len(args)-1],
		Mode:                mode,
		Algorithm:           algo,
		FollowSymlinks:      cfg.FollowSymlinks || flags.followSymlinks,
		IgnoreHardlinks:     !flags.dontIgnoreHardlink,
		UseSourceCache:      cacheEnabled && cfg.Cache.Source && !flags.noSourceCache,
		UseDestinationCache: cacheEnabled && cfg.Cache.Destination && !flags.noDestinationCache,
		ShowProgress:        isatty.IsTerminal(os.Stdout.Fd()),
		Out:                 os.Stdout,
	}, nil
}

// printBanner shows the effective settings before hashing starts
func printBanner(opts runner.Options) {
	pterm.DefaultSection.Println("linkdup")
	pterm.Info.Printfln("Mode: %s", opts.Mode)
	pterm.Info.Printfln("Algorithm: %s", opts.Algorithm)
	pterm.Info.Printfln("Use source cache: %t", opts.UseSourceCache)
	pterm.Info.Printfln("Use destination cache: %t", opts.UseDestinationCache)
}

// printHashTable renders one tree's digest map for --print-hashes
func printHashTable(title string, hashes map[string]string) {
	pterm.DefaultSection.Println(title)

	data := pterm.TableData{{"Path", "Digest", "Size"}}
	for digest, path := range hashes {
		info, err := os.Stat(path)
		size := int64(0)
		if err == nil {
			size = info.Size()
		}
		data = append(data, []string{path, digest, fmt.Sprintf("%d", size)})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		log.Warn().Err(err).Msg("failed to render hash table")
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("linkdup version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
