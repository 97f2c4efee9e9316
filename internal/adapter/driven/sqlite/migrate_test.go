package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesAllMigrations(t *testing.T) {
	db := setupTestDB(t)

	assert.Equal(t, uint(2), db.SchemaVersion())

	for _, table := range []string{"runs", "pair_results", "entries"} {
		var name string
		err := db.conn.QueryRowContext(context.Background(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestOpen_ReopenIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octa.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, uint(2), second.SchemaVersion())
}
