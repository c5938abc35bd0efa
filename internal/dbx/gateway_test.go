package dbx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSQLitePragmas(t *testing.T) {
	const all = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate"

	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"bare path", "quest.db", "file:quest.db?" + all},
		{"file uri", "file:/var/lib/quest.db", "file:/var/lib/quest.db?" + all},
		{"complete dsn kept", SQLiteDSN("/tmp/q.db"), SQLiteDSN("/tmp/q.db")},
		{
			"operator settings win",
			"/tmp/q.db?_pragma=busy_timeout(500)&_txlock=deferred",
			"file:/tmp/q.db?_pragma=busy_timeout(500)&_txlock=deferred&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		},
		{
			"assignment form counts",
			"q.db?_pragma=foreign_keys=off",
			"file:q.db?_pragma=foreign_keys=off&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := withSQLitePragmas(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithSQLitePragmas_Invalid(t *testing.T) {
	for _, dsn := range []string{"", "?_txlock=immediate", "q.db?%zz"} {
		_, err := withSQLitePragmas(dsn)
		assert.ErrorIs(t, err, common.ErrorInvalidInput, dsn)
	}
}

func TestOpen_PlainSQLitePathEnforcesForeignKeys(t *testing.T) {
	ctx := context.Background()
	g, err := Open(ctx, DialectSQLite, filepath.Join(t.TempDir(), "quest.db"))
	require.NoError(t, err)
	defer g.Close()

	var fk, timeout int
	require.NoError(t, g.DB().QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	require.NoError(t, g.DB().QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 10000, timeout)

	_, err = g.DB().ExecContext(ctx, `
		CREATE TABLE parent (id INTEGER PRIMARY KEY);
		CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parent(id));`)
	require.NoError(t, err)

	err = g.WithSerializableTx(ctx, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO child (parent_id) VALUES (999)`)
		return Classify(err)
	})
	require.ErrorIs(t, err, common.ErrorPersistence)
}
