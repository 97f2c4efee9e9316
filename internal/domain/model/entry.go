package model

// MismatchSentinel is shown in the Password column of a mismatch row when
// base passwords are not resolved.
const MismatchSentinel = "hash mismatch"

// Outcome classifies one match-file username against a base table.
type Outcome int

const (
	OutcomeUnmatched  Outcome = iota // username absent from the base
	OutcomeMatched                   // same username, identical hash
	OutcomeMismatched                // same username, different hash
)

// String returns the lower-case outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeMismatched:
		return "mismatched"
	default:
		return "unmatched"
	}
}

// MatchEntry is a match-file credential whose hash equals the base hash.
// Password always comes from the base file.
type MatchEntry struct {
	Username string
	Hash     string
	Password string
	Source   string // label of the match file the entry came from
}

// MismatchEntry is a match-file credential whose username exists in the base
// with a different hash.
type MismatchEntry struct {
	Username string
	Hash     string // the match file's hash
	Password string // MismatchSentinel or the resolved base password
	Comment  string
	Source   string
	Resolved bool // Password holds the base password
}

// Counts tallies comparison outcomes.
type Counts struct {
	Matched    int
	Mismatched int
	Unmatched  int
}

// Total returns the number of classified usernames.
func (c Counts) Total() int {
	return c.Matched + c.Mismatched + c.Unmatched
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Matched:    c.Matched + o.Matched,
		Mismatched: c.Mismatched + o.Mismatched,
		Unmatched:  c.Unmatched + o.Unmatched,
	}
}
