package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

func tableOf(records ...model.Record) *model.Table {
	t := model.NewTable()
	for _, r := range records {
		t.Put(r)
	}
	return t
}

func TestClassify(t *testing.T) {
	base := tableOf(model.Record{Username: "alice", Hash: "H1", Password: "P1"})

	outcome, known := Classify(base, model.Record{Username: "alice", Hash: "H1"})
	assert.Equal(t, model.OutcomeMatched, outcome)
	assert.Equal(t, "P1", known.Password)

	outcome, _ = Classify(base, model.Record{Username: "alice", Hash: "H2"})
	assert.Equal(t, model.OutcomeMismatched, outcome)

	outcome, known = Classify(base, model.Record{Username: "bob", Hash: "H1"})
	assert.Equal(t, model.OutcomeUnmatched, outcome)
	assert.Equal(t, model.Credential{}, known)
}

func TestCompare_ExactMatchCarriesBasePassword(t *testing.T) {
	base := tableOf(model.Record{Username: "alice", Hash: "H1", Password: "P1"})
	match := tableOf(model.Record{Username: "alice", Hash: "H1", Password: "X"})

	got := Compare(base, match, "leak.txt", CompareOptions{})

	require.Len(t, got.Matches, 1)
	assert.Equal(t, model.MatchEntry{Username: "alice", Hash: "H1", Password: "P1", Source: "leak.txt"}, got.Matches[0])
	assert.Empty(t, got.Mismatches)
	assert.Equal(t, model.Counts{Matched: 1}, got.Counts)
}

func TestCompare_Mismatch(t *testing.T) {
	base := tableOf(model.Record{Username: "bob", Hash: "H1", Password: "P1"})
	match := tableOf(model.Record{Username: "bob", Hash: "H2", Password: "X"})

	got := Compare(base, match, "leak.txt", CompareOptions{})

	assert.Empty(t, got.Matches)
	require.Len(t, got.Mismatches, 1)
	m := got.Mismatches[0]
	assert.Equal(t, "bob", m.Username)
	assert.Equal(t, "H2", m.Hash)
	assert.Equal(t, model.MismatchSentinel, m.Password)
	assert.False(t, m.Resolved)
	assert.Contains(t, m.Comment, "leak.txt")
	assert.NotContains(t, m.Comment, "Email")
	assert.Equal(t, "leak.txt", m.Source)
	assert.Equal(t, model.Counts{Mismatched: 1}, got.Counts)
}

func TestCompare_MismatchResolvedPassword(t *testing.T) {
	base := tableOf(model.Record{Username: "bob", Hash: "H1", Password: "P1"})
	match := tableOf(model.Record{Username: "bob", Hash: "H2", Password: "X"})

	got := Compare(base, match, "leak.txt", CompareOptions{ResolvePasswords: true})

	require.Len(t, got.Mismatches, 1)
	assert.Equal(t, "P1", got.Mismatches[0].Password)
	assert.True(t, got.Mismatches[0].Resolved)
}

func TestCompare_EmailMismatchAnnotated(t *testing.T) {
	base := tableOf(model.Record{Username: "bob@example.com", Hash: "H1", Password: "P1"})
	match := tableOf(model.Record{Username: "bob@example.com", Hash: "H2"})

	got := Compare(base, match, "leak.txt", CompareOptions{})

	require.Len(t, got.Mismatches, 1)
	assert.Contains(t, got.Mismatches[0].Comment, "leak.txt")
	assert.Contains(t, got.Mismatches[0].Comment, "Email found as username")
}

func TestCompare_Unmatched(t *testing.T) {
	got := Compare(model.NewTable(), tableOf(model.Record{Username: "carol", Hash: "H1", Password: "X"}), "leak.txt", CompareOptions{})

	assert.Empty(t, got.Matches)
	assert.Empty(t, got.Mismatches)
	assert.Equal(t, model.Counts{Unmatched: 1}, got.Counts)
}

func TestCompare_PartitionsAllUsernames(t *testing.T) {
	base := tableOf(
		model.Record{Username: "a", Hash: "1"},
		model.Record{Username: "b", Hash: "2"},
		model.Record{Username: "c", Hash: "3"},
	)
	match := tableOf(
		model.Record{Username: "a", Hash: "1"},
		model.Record{Username: "b", Hash: "x"},
		model.Record{Username: "d", Hash: "4"},
		model.Record{Username: "e", Hash: "5"},
	)

	got := Compare(base, match, "m", CompareOptions{})

	assert.Equal(t, model.Counts{Matched: 1, Mismatched: 1, Unmatched: 2}, got.Counts)
	assert.Equal(t, match.Len(), got.Counts.Total())
	assert.Len(t, got.Matches, got.Counts.Matched)
	assert.Len(t, got.Mismatches, got.Counts.Mismatched)
}

func TestCompare_Idempotent(t *testing.T) {
	base := tableOf(model.Record{Username: "a", Hash: "1", Password: "p"}, model.Record{Username: "b", Hash: "2"})
	match := tableOf(model.Record{Username: "b", Hash: "9"}, model.Record{Username: "a", Hash: "1"})

	first := Compare(base, match, "m", CompareOptions{})
	second := Compare(base, match, "m", CompareOptions{})

	assert.ElementsMatch(t, first.Matches, second.Matches)
	assert.ElementsMatch(t, first.Mismatches, second.Mismatches)
	assert.Equal(t, first.Counts, second.Counts)
}

func TestCompare_SortKeys(t *testing.T) {
	base := tableOf(model.Record{Username: "a", Hash: "1"}, model.Record{Username: "b", Hash: "2"}, model.Record{Username: "c", Hash: "3"})
	match := tableOf(model.Record{Username: "c", Hash: "3"}, model.Record{Username: "a", Hash: "1"}, model.Record{Username: "b", Hash: "2"})

	insertion := Compare(base, match, "m", CompareOptions{})
	sorted := Compare(base, match, "m", CompareOptions{SortKeys: true})

	usernames := func(entries []model.MatchEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Username)
		}
		return out
	}
	assert.Equal(t, []string{"c", "a", "b"}, usernames(insertion.Matches))
	assert.Equal(t, []string{"a", "b", "c"}, usernames(sorted.Matches))
}

func TestMismatchComment(t *testing.T) {
	assert.Equal(t, "Found in leak.txt.", MismatchComment("leak.txt", "alice"))
	assert.Equal(t,
		"Found in leak.txt. Email found as username. Base password may still be valid for this account.",
		MismatchComment("leak.txt", "a@b.com"),
	)
}
