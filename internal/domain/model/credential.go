package model

// Record is a single parsed credential line. Username is the identity key.
type Record struct {
	Username string
	Hash     string
	Password string // empty when the source line carried no password field
}

// Credential is the value stored in a Table for one username.
type Credential struct {
	Hash     string
	Password string
}

// Table maps usernames to credentials for a single source file. Iteration
// follows insertion order. A repeated username keeps the position of its
// first occurrence and the value of its last.
//
// A Table is built once by a loader and must not be modified afterwards.
type Table struct {
	order   []string
	entries map[string]Credential
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Credential)}
}

// Put inserts or replaces the credential for r.Username.
func (t *Table) Put(r Record) {
	if _, ok := t.entries[r.Username]; !ok {
		t.order = append(t.order, r.Username)
	}
	t.entries[r.Username] = Credential{Hash: r.Hash, Password: r.Password}
}

// Get returns the credential stored for username.
func (t *Table) Get(username string) (Credential, bool) {
	c, ok := t.entries[username]
	return c, ok
}

// Len returns the number of distinct usernames.
func (t *Table) Len() int {
	return len(t.order)
}

// Records returns the table contents in insertion order.
func (t *Table) Records() []Record {
	records := make([]Record, 0, len(t.order))
	for _, u := range t.order {
		c := t.entries[u]
		records = append(records, Record{Username: u, Hash: c.Hash, Password: c.Password})
	}
	return records
}
