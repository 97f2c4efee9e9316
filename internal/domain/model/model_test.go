package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"base.txt", "base"},
		{"/data/leaks/rockyou.tar.gz", "rockyou.tar"},
		{"dump", "dump"},
		{".hidden", ".hidden"},
		{"dir/list.v2.txt", "list.v2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stem(tt.path), tt.path)
	}
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "list.txt", SourceLabel("/tmp/in/list.txt"))
}

func TestTable_PutKeepsFirstPosition(t *testing.T) {
	table := NewTable()
	table.Put(Record{Username: "a", Hash: "1"})
	table.Put(Record{Username: "b", Hash: "2"})
	table.Put(Record{Username: "a", Hash: "3", Password: "p"})

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []Record{
		{Username: "a", Hash: "3", Password: "p"},
		{Username: "b", Hash: "2"},
	}, table.Records())
}

func TestTable_Get(t *testing.T) {
	table := NewTable()
	table.Put(Record{Username: "a", Hash: "1", Password: "p"})

	got, ok := table.Get("a")
	assert.True(t, ok)
	assert.Equal(t, Credential{Hash: "1", Password: "p"}, got)

	_, ok = table.Get("missing")
	assert.False(t, ok)
}

func TestCounts(t *testing.T) {
	c := Counts{Matched: 1, Mismatched: 2, Unmatched: 3}.Add(Counts{Matched: 1})
	assert.Equal(t, Counts{Matched: 2, Mismatched: 2, Unmatched: 3}, c)
	assert.Equal(t, 7, c.Total())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "matched", OutcomeMatched.String())
	assert.Equal(t, "mismatched", OutcomeMismatched.String())
	assert.Equal(t, "unmatched", OutcomeUnmatched.String())
}
