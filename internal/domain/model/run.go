package model

import "time"

// ReportKind selects which half of the output tree a report belongs to.
type ReportKind string

const (
	ReportMatches    ReportKind = "matches"
	ReportMismatches ReportKind = "mismatches"
)

// RunStats holds run-wide counters. Processed and Failed count base/match
// pairs; the outcome counters sum over every compared pair.
type RunStats struct {
	RunID      string
	Processed  int
	Failed     int
	Matched    int
	Mismatched int
	Unmatched  int
}

// AddCounts folds one pair's outcome counts into the run totals.
func (s *RunStats) AddCounts(c Counts) {
	s.Matched += c.Matched
	s.Mismatched += c.Mismatched
	s.Unmatched += c.Unmatched
}

// Run describes one pipeline execution as recorded in the results store.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	BaseFiles  []string
	OutputDir  string
	Stats      RunStats
}

// PairResult is the outcome of comparing one match file against one base.
// Err is non-empty when the pair failed.
type PairResult struct {
	ID         int64
	Base       string
	Source     string
	Counts     Counts
	Matches    []MatchEntry
	Mismatches []MismatchEntry
	Err        string
}
