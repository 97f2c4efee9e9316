package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/octa/internal/application"
	"github.com/ericfisherdev/octa/internal/domain/model"
	"github.com/ericfisherdev/octa/internal/domain/port/driven"
)

var errNoStore = errors.New("run history is disabled: set OCTA_DB_PATH or --db")

func (c *cli) newRunsCmd() *cobra.Command {
	runs := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history kept in the results store",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd.Context(), func(repo driven.ResultStore) error {
				runs, err := repo.ListRuns(cmd.Context())
				if err != nil {
					return err
				}
				printRuns(c.out, runs)
				return nil
			})
		},
	}

	var entries bool
	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the totals and per-pair results of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(repo driven.ResultStore) error {
				run, err := repo.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				pairs, err := repo.ListPairs(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				printRun(c.out, run, pairs, entries)
				return nil
			})
		},
	}
	show.Flags().BoolVar(&entries, "entries", false, "print the stored match and mismatch tables of every pair")

	runs.AddCommand(list, show)
	return runs
}

func (c *cli) withStore(ctx context.Context, fn func(driven.ResultStore) error) error {
	if !c.cfg.HasResultStore() {
		return errNoStore
	}
	repo, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(repo)
}

func printRuns(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tBASES\tPROCESSED\tFAILED\tMATCHES\tMISMATCHES\tUNMATCHED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			strings.Join(r.BaseFiles, ","),
			r.Stats.Processed, r.Stats.Failed,
			r.Stats.Matched, r.Stats.Mismatched, r.Stats.Unmatched,
		)
	}
	_ = tw.Flush()
}

func printRun(w io.Writer, run *model.Run, pairs []model.PairResult, withEntries bool) {
	fmt.Fprintf(w, "Run        : %s\n", run.ID)
	fmt.Fprintf(w, "Started    : %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt.IsZero() {
		fmt.Fprintln(w, "Finished   : (incomplete)")
	} else {
		fmt.Fprintf(w, "Finished   : %s\n", run.FinishedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(w, "Base files : %s\n", strings.Join(run.BaseFiles, ", "))
	fmt.Fprintf(w, "Output     : %s\n", run.OutputDir)
	printSummary(w, run.Stats)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BASE\tSOURCE\tMATCHES\tMISMATCHES\tUNMATCHED\tERROR")
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			p.Base, p.Source, p.Counts.Matched, p.Counts.Mismatched, p.Counts.Unmatched, p.Err)
	}
	_ = tw.Flush()

	if !withEntries {
		return
	}
	for _, p := range pairs {
		table := application.RenderTable(p.Matches, application.SortMismatches(p.Mismatches))
		if table == "" {
			continue
		}
		fmt.Fprintf(w, "\n## %s vs %s\n\n%s", p.Base, p.Source, table)
	}
}
