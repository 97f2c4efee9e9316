// Package application contains the credential correlation use cases.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/octa/internal/domain/model"
	"github.com/ericfisherdev/octa/internal/domain/port/driven"
)

// ErrNoSources is returned by Run when neither match files nor a match
// directory were supplied.
var ErrNoSources = errors.New("no match files or match directory given")

// Options configures a Pipeline.
type Options struct {
	CompareOptions

	// Parallelism is the number of match files loaded concurrently. Pairs are
	// still compared, reported and aggregated in input order. Values below 1
	// mean sequential loading.
	Parallelism int

	// OutputDir is recorded with the run in the results store.
	OutputDir string
}

// MatchSources lists the match files of a run. Files takes precedence over Dir.
type MatchSources struct {
	Files []string
	Dir   string
}

// Pipeline drives the base × match cross product.
type Pipeline struct {
	source  driven.CredentialSource
	reports driven.ReportWriter
	store   driven.ResultStore
	opts    Options
	logger  *slog.Logger

	newRunID func() string
	now      func() time.Time
}

// NewPipeline creates a Pipeline. store may be nil to disable run history.
func NewPipeline(
	source driven.CredentialSource,
	reports driven.ReportWriter,
	store driven.ResultStore,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Pipeline{
		source:   source,
		reports:  reports,
		store:    store,
		opts:     opts,
		logger:   logger,
		newRunID: func() string { return uuid.NewString() },
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// runState is the mutable state of a single Run call.
type runState struct {
	id    string
	agg   *Aggregator
	stats model.RunStats
	store driven.ResultStore
}

// Run compares every match source against every base file, writes per-pair
// reports, then writes one aggregated report per base identity. The output
// root must already be clear.
//
// A match file that cannot be loaded or reported is counted in Failed and
// the run continues. A base file that cannot be loaded skips that base; its
// error is joined into the returned error. If ctx is canceled the run stops
// before the aggregated reports are written.
func (p *Pipeline) Run(ctx context.Context, baseFiles []string, sources MatchSources) (model.RunStats, error) {
	paths, err := p.resolveSources(ctx, sources)
	if err != nil {
		return model.RunStats{}, err
	}

	if err := p.reports.Prepare(); err != nil {
		return model.RunStats{}, fmt.Errorf("prepare output: %w", err)
	}

	rs := &runState{id: p.newRunID(), agg: NewAggregator(), store: p.store}
	rs.stats.RunID = rs.id
	p.beginRun(ctx, rs, baseFiles)

	var errs []error
	for _, base := range baseFiles {
		if err := ctx.Err(); err != nil {
			return rs.stats, err
		}

		baseTable, err := p.source.Load(ctx, base)
		if err != nil {
			if ctx.Err() != nil {
				return rs.stats, ctx.Err()
			}
			p.logger.Error("failed to load base file, skipping", "base", base, "error", err)
			errs = append(errs, fmt.Errorf("base %s: %w", base, err))
			continue
		}
		p.logger.Info("base file loaded", "base", base, "records", baseTable.Len())

		if err := p.processBase(ctx, rs, base, baseTable, paths); err != nil {
			return rs.stats, err
		}
	}

	for _, key := range rs.agg.Keys() {
		for _, kind := range []model.ReportKind{model.ReportMatches, model.ReportMismatches} {
			body := rs.agg.Render(key, kind)
			if body == "" {
				continue
			}
			if err := p.reports.WriteAggregate(key, kind, body); err != nil {
				p.logger.Error("failed to write aggregated report", "base", key, "kind", kind, "error", err)
				errs = append(errs, err)
			}
		}
	}

	p.finishRun(ctx, rs)
	p.logger.Info("run complete",
		"run_id", rs.id,
		"processed", rs.stats.Processed,
		"failed", rs.stats.Failed,
		"matched", rs.stats.Matched,
		"mismatched", rs.stats.Mismatched,
		"unmatched", rs.stats.Unmatched,
	)

	return rs.stats, errors.Join(errs...)
}

func (p *Pipeline) resolveSources(ctx context.Context, sources MatchSources) ([]string, error) {
	if len(sources.Files) > 0 {
		return sources.Files, nil
	}
	if sources.Dir == "" {
		return nil, ErrNoSources
	}
	paths, err := p.source.List(ctx, sources.Dir)
	if err != nil {
		return nil, fmt.Errorf("list match directory: %w", err)
	}
	p.logger.Debug("match directory listed", "dir", sources.Dir, "files", len(paths))
	return paths, nil
}

type loadResult struct {
	table *model.Table
	err   error
}

// processBase runs every match source against one base table. Sources are
// loaded in windows of opts.Parallelism and handled in input order.
func (p *Pipeline) processBase(ctx context.Context, rs *runState, base string, baseTable *model.Table, paths []string) error {
	baseKey := model.Stem(base)
	window := p.opts.Parallelism

	for start := 0; start < len(paths); start += window {
		end := min(start+window, len(paths))
		batch := paths[start:end]
		results := make([]loadResult, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(window)
		for i, path := range batch {
			g.Go(func() error {
				table, err := p.source.Load(gctx, path)
				results[i] = loadResult{table: table, err: err}
				return nil
			})
		}
		_ = g.Wait() // loaders never return errors; failures are kept per result

		for i, path := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.processPair(ctx, rs, baseKey, baseTable, path, results[i])
		}
	}
	return nil
}

func (p *Pipeline) processPair(ctx context.Context, rs *runState, baseKey string, baseTable *model.Table, path string, loaded loadResult) {
	label := model.SourceLabel(path)
	pair := model.PairResult{Base: baseKey, Source: label}

	if loaded.err != nil {
		rs.stats.Failed++
		p.logger.Error("failed to process match file", "base", baseKey, "source", path, "error", loaded.err)
		pair.Err = loaded.err.Error()
		p.savePair(ctx, rs, pair)
		return
	}

	cmp := Compare(baseTable, loaded.table, label, p.opts.CompareOptions)
	rs.stats.AddCounts(cmp.Counts)
	rs.agg.AddMatches(baseKey, cmp.Matches)
	rs.agg.AddMismatches(baseKey, cmp.Mismatches)

	pair.Counts = cmp.Counts
	pair.Matches = cmp.Matches
	pair.Mismatches = cmp.Mismatches

	if err := p.writePairReports(baseKey, model.Stem(path), cmp); err != nil {
		rs.stats.Failed++
		p.logger.Error("failed to write pair report", "base", baseKey, "source", path, "error", err)
		pair.Err = err.Error()
	} else {
		rs.stats.Processed++
	}

	p.logger.Info("processed match file",
		"base", baseKey,
		"source", path,
		"matched", cmp.Counts.Matched,
		"mismatched", cmp.Counts.Mismatched,
		"unmatched", cmp.Counts.Unmatched,
		"files_processed", rs.stats.Processed,
	)
	p.savePair(ctx, rs, pair)
}

// writePairReports writes the non-empty per-pair tables. Both reports are
// attempted even if the first fails.
func (p *Pipeline) writePairReports(baseKey, sourceKey string, cmp Comparison) error {
	var errs []error
	if body := RenderTable(cmp.Matches, nil); body != "" {
		if err := p.reports.WritePair(baseKey, sourceKey, model.ReportMatches, body); err != nil {
			errs = append(errs, err)
		}
	}
	if body := RenderTable(nil, SortMismatches(cmp.Mismatches)); body != "" {
		if err := p.reports.WritePair(baseKey, sourceKey, model.ReportMismatches, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// The results store is auxiliary: its failures are logged and, after a failed
// BeginRun, the store is dropped for the rest of the run.

func (p *Pipeline) beginRun(ctx context.Context, rs *runState, baseFiles []string) {
	if rs.store == nil {
		return
	}
	err := rs.store.BeginRun(ctx, model.Run{
		ID:        rs.id,
		StartedAt: p.now(),
		BaseFiles: baseFiles,
		OutputDir: p.opts.OutputDir,
	})
	if err != nil {
		p.logger.Error("failed to record run start, run history disabled", "run_id", rs.id, "error", err)
		rs.store = nil
	}
}

func (p *Pipeline) savePair(ctx context.Context, rs *runState, pair model.PairResult) {
	if rs.store == nil {
		return
	}
	if err := rs.store.SavePair(ctx, rs.id, pair); err != nil {
		p.logger.Error("failed to record pair result", "run_id", rs.id, "base", pair.Base, "source", pair.Source, "error", err)
	}
}

func (p *Pipeline) finishRun(ctx context.Context, rs *runState) {
	if rs.store == nil {
		return
	}
	if err := rs.store.FinishRun(ctx, rs.id, rs.stats); err != nil {
		p.logger.Error("failed to record run finish", "run_id", rs.id, "error", err)
	}
}
