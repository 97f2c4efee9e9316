package application

import (
	"sort"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

// CompareOptions tunes how a match table is compared against a base.
type CompareOptions struct {
	// ResolvePasswords shows the base password on mismatch rows instead of
	// model.MismatchSentinel.
	ResolvePasswords bool

	// SortKeys iterates the match table in lexicographic username order
	// rather than insertion order.
	SortKeys bool
}

// Comparison is the result of comparing one match table against one base.
type Comparison struct {
	Matches    []model.MatchEntry
	Mismatches []model.MismatchEntry
	Counts     model.Counts
}

// Classify decides the outcome for one match-file record and returns the base
// credential when the username is known.
func Classify(base *model.Table, rec model.Record) (model.Outcome, model.Credential) {
	known, ok := base.Get(rec.Username)
	switch {
	case !ok:
		return model.OutcomeUnmatched, model.Credential{}
	case known.Hash == rec.Hash:
		return model.OutcomeMatched, known
	default:
		return model.OutcomeMismatched, known
	}
}

// Compare classifies every username of match against base. sourceLabel tags
// each produced entry and is embedded in mismatch comments. The returned
// lists are in iteration order; display ordering is left to the caller.
func Compare(base, match *model.Table, sourceLabel string, opts CompareOptions) Comparison {
	records := match.Records()
	if opts.SortKeys {
		sort.Slice(records, func(i, j int) bool { return records[i].Username < records[j].Username })
	}

	var out Comparison
	for _, rec := range records {
		outcome, known := Classify(base, rec)
		switch outcome {
		case model.OutcomeMatched:
			out.Matches = append(out.Matches, model.MatchEntry{
				Username: rec.Username,
				Hash:     rec.Hash,
				Password: known.Password,
				Source:   sourceLabel,
			})
			out.Counts.Matched++
		case model.OutcomeMismatched:
			password := model.MismatchSentinel
			if opts.ResolvePasswords {
				password = known.Password
			}
			out.Mismatches = append(out.Mismatches, model.MismatchEntry{
				Username: rec.Username,
				Hash:     rec.Hash,
				Password: password,
				Comment:  MismatchComment(sourceLabel, rec.Username),
				Source:   sourceLabel,
				Resolved: opts.ResolvePasswords,
			})
			out.Counts.Mismatched++
		case model.OutcomeUnmatched:
			out.Counts.Unmatched++
		}
	}
	return out
}

// MismatchComment builds the Comments cell for a mismatch row.
func MismatchComment(sourceLabel, username string) string {
	comment := "Found in " + sourceLabel + "."
	if LooksLikeEmail(username) {
		comment += " Email found as username. Base password may still be valid for this account."
	}
	return comment
}
