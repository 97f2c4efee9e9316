package application

import (
	"sync"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

type bucket struct {
	matches    []model.MatchEntry
	mismatches []model.MismatchEntry
}

// Aggregator accumulates entries per base identity across every match source
// of a run. Appends are serialised, so concurrent producers are safe; the
// order of appends only affects grouping in the rendered view. Create one
// Aggregator per run.
type Aggregator struct {
	mu      sync.Mutex
	order   []string
	buckets map[string]*bucket
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{buckets: make(map[string]*bucket)}
}

// bucketFor returns the bucket for baseKey, creating it on first use.
// Callers must hold a.mu.
func (a *Aggregator) bucketFor(baseKey string) *bucket {
	b, ok := a.buckets[baseKey]
	if !ok {
		b = &bucket{}
		a.buckets[baseKey] = b
		a.order = append(a.order, baseKey)
	}
	return b
}

// AddMatches appends entries to the bucket of baseKey.
func (a *Aggregator) AddMatches(baseKey string, entries []model.MatchEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bucketFor(baseKey)
	b.matches = append(b.matches, entries...)
}

// AddMismatches appends entries to the bucket of baseKey.
func (a *Aggregator) AddMismatches(baseKey string, entries []model.MismatchEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bucketFor(baseKey)
	b.mismatches = append(b.mismatches, entries...)
}

// Keys returns base identities in order of first contribution.
func (a *Aggregator) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Entries returns copies of the accumulated entries for baseKey.
func (a *Aggregator) Entries(baseKey string) ([]model.MatchEntry, []model.MismatchEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buckets[baseKey]
	if !ok {
		return nil, nil
	}
	matches := make([]model.MatchEntry, len(b.matches))
	copy(matches, b.matches)
	mismatches := make([]model.MismatchEntry, len(b.mismatches))
	copy(mismatches, b.mismatches)
	return matches, mismatches
}

// Render returns the accumulated table of the given kind for baseKey. Match
// rows are tagged with their source; mismatch rows are sorted with
// SortMismatches. Widths are computed over the full accumulated set.
func (a *Aggregator) Render(baseKey string, kind model.ReportKind) string {
	matches, mismatches := a.Entries(baseKey)
	switch kind {
	case model.ReportMatches:
		return renderRows(buildRows(matches, nil, true))
	case model.ReportMismatches:
		return renderRows(buildRows(nil, SortMismatches(mismatches), false))
	default:
		return ""
	}
}
