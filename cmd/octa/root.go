package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/octa/internal/adapter/driven/credfile"
	"github.com/ericfisherdev/octa/internal/adapter/driven/reportfs"
	sqliteadapter "github.com/ericfisherdev/octa/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/octa/internal/application"
	"github.com/ericfisherdev/octa/internal/config"
	"github.com/ericfisherdev/octa/internal/domain/model"
	"github.com/ericfisherdev/octa/internal/domain/port/driven"
)

// cli carries the resolved configuration and I/O streams shared by all commands.
type cli struct {
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	debug     bool
	yes       bool
	bases     []string
	matches   []string
	directory string
}

func newRootCmd(cfg *config.Config, in io.Reader, out io.Writer, logOut io.Writer) *cobra.Command {
	c := &cli{cfg: cfg, in: in, out: out}

	root := &cobra.Command{
		Use:   "octa",
		Short: "Correlate credential dumps against known base lists",
		Long: `octa compares every match file against every base file of
username:hash[:password] records and reports, per pair and per base file,
which usernames share a hash with the base (matches) and which appear with a
different hash (mismatches).

Explicit match files take precedence over a match directory.`,
		Example: `  octa -b known.txt -m leak1.txt -m leak2.txt
  octa -b a.txt -b b.txt -d ./dumps -o results --yes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := c.cfg.LogLevel
			if c.debug {
				level = slog.LevelDebug
			}
			c.logger = newLogger(logOut, level)
			slog.SetDefault(c.logger)
		},
		RunE: c.runCorrelate,
	}

	flags := root.Flags()
	flags.StringArrayVarP(&c.bases, "base", "b", nil, "base credential file (username:hash:password), repeatable")
	flags.StringArrayVarP(&c.matches, "match", "m", nil, "match file to compare against the base files, repeatable")
	flags.StringVarP(&c.directory, "directory", "d", "", "directory of match files")
	flags.StringVarP(&c.cfg.OutputDir, "outdir", "o", c.cfg.OutputDir, "output directory for reports")
	flags.BoolVarP(&c.yes, "yes", "y", false, "overwrite an existing output directory without asking")
	flags.BoolVar(&c.cfg.HTMLReports, "html", c.cfg.HTMLReports, "write an HTML copy of every report")
	flags.BoolVar(&c.cfg.ResolvePasswords, "resolve-passwords", c.cfg.ResolvePasswords, "show the base password on mismatch rows")
	flags.BoolVar(&c.cfg.SortKeys, "sort-keys", c.cfg.SortKeys, "compare usernames in sorted order")
	flags.IntVar(&c.cfg.Parallelism, "parallelism", c.cfg.Parallelism, "number of match files loaded concurrently")
	_ = root.MarkFlagRequired("base")

	persistent := root.PersistentFlags()
	persistent.BoolVar(&c.debug, "debug", false, "enable debug logging")
	persistent.StringVar(&c.cfg.DBPath, "db", c.cfg.DBPath, "SQLite results store path (empty disables run history)")

	root.AddCommand(c.newRunsCmd())

	return root
}

func (c *cli) runCorrelate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if len(c.matches) == 0 && c.directory == "" {
		return fmt.Errorf("%w: use --match or --directory", application.ErrNoSources)
	}
	if c.cfg.Parallelism < 1 {
		return fmt.Errorf("--parallelism must be at least 1, got %d", c.cfg.Parallelism)
	}

	proceed, err := c.clearOutputDir(c.cfg.OutputDir)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Fprintln(c.out, "Operation cancelled. Exiting.")
		return nil
	}

	store, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	pipeline := application.NewPipeline(
		credfile.NewLoader(c.logger),
		reportfs.NewWriter(c.cfg.OutputDir, c.cfg.HTMLReports, c.logger),
		store,
		application.Options{
			CompareOptions: application.CompareOptions{
				ResolvePasswords: c.cfg.ResolvePasswords,
				SortKeys:         c.cfg.SortKeys,
			},
			Parallelism: c.cfg.Parallelism,
			OutputDir:   c.cfg.OutputDir,
		},
		c.logger,
	)

	stats, runErr := pipeline.Run(ctx, c.bases, application.MatchSources{
		Files: c.matches,
		Dir:   c.directory,
	})
	printSummary(c.out, stats)
	return runErr
}

// clearOutputDir asks before removing an existing output directory. It
// returns false when the user declines.
func (c *cli) clearOutputDir(dir string) (bool, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat output directory: %w", err)
	}

	if !c.yes {
		ok, err := confirm(c.in, c.out, fmt.Sprintf("The directory '%s' already exists. Overwrite?", dir))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("clear output directory: %w", err)
	}
	fmt.Fprintf(c.out, "Directory '%s' has been cleared and will be recreated.\n", dir)
	return true, nil
}

// openStore opens the results store when a database path is configured and
// returns a nil interface otherwise. The returned close function is always
// safe to call.
func (c *cli) openStore(ctx context.Context) (driven.ResultStore, func(), error) {
	noop := func() {}
	if !c.cfg.HasResultStore() {
		return nil, noop, nil
	}

	db, err := sqliteadapter.Open(ctx, c.cfg.DBPath)
	if err != nil {
		return nil, noop, err
	}
	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			c.logger.Error("error closing database", "error", closeErr)
		}
	}

	repo, err := sqliteadapter.NewRunRepo(db, c.cfg.SecretKey)
	if err != nil {
		closeDB()
		return nil, noop, err
	}
	c.logger.Debug("results store opened",
		"path", c.cfg.DBPath,
		"schema_version", db.SchemaVersion(),
		"encrypted", c.cfg.SecretKey != nil,
	)

	return repo, closeDB, nil
}

func printSummary(w io.Writer, stats model.RunStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "*** Processing Results ***")
	fmt.Fprintf(w, "Files Processed        : %d\n", stats.Processed)
	fmt.Fprintf(w, "Failed Files           : %d\n", stats.Failed)
	fmt.Fprintf(w, "Total Matches          : %d\n", stats.Matched)
	fmt.Fprintf(w, "Total Mismatches       : %d\n", stats.Mismatched)
	fmt.Fprintf(w, "Total Unmatched        : %d\n", stats.Unmatched)
}
