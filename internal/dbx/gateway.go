package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names the backing store. Its value doubles as the database/sql
// driver name.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect accepts the driver names used in configuration.
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", name)
}

// Gateway owns the connection pool and hands out serializable transactions.
// A transaction handle is bound to one connection and must not be shared
// between concurrent operations.
type Gateway struct {
	db      *sql.DB
	dialect Dialect
}

// NewGateway wraps an already opened pool.
func NewGateway(db *sql.DB, dialect Dialect) *Gateway {
	return &Gateway{db: db, dialect: dialect}
}

// Open opens a pool for the dialect and verifies that the store answers.
// SQLite DSNs are completed with the pragmas the repositories rely on.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Gateway, error) {
	if dialect == DialectSQLite {
		var err error
		if dsn, err = withSQLitePragmas(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", dialect, common.ErrorStoreUnavailable, err)
	}
	g := NewGateway(db, dialect)
	if err := g.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return g, nil
}

// DB exposes the pool for migrations.
func (g *Gateway) DB() *sql.DB { return g.db }

// Dialect reports the backing store.
func (g *Gateway) Dialect() Dialect { return g.dialect }

// Reader returns an unscoped handle for read-only listings.
func (g *Gateway) Reader() DBTX { return g.db }

// TxOptions returns the strictest isolation the dialect offers. SQLite is
// serializable by construction; its DSN is expected to carry
// _txlock=immediate so that writers queue on the busy timeout instead of
// failing on lock upgrade.
func (g *Gateway) TxOptions() *sql.TxOptions {
	if g.dialect == DialectPostgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

// WithSerializableTx runs fn inside one serializable transaction. Rollback is
// guaranteed on every exit path that does not reach commit.
func (g *Gateway) WithSerializableTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, g.db, g.TxOptions(), fn)
}

// Ping checks that a connection can be acquired.
func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %v", common.ErrorStoreUnavailable, err)
	}
	return nil
}

// Close releases the pool.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// SQLiteDSN builds a DSN for a file-backed SQLite store with foreign keys,
// WAL journaling, a busy timeout and immediate transaction locking.
func SQLiteDSN(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_txlock=immediate"
}

var sqlitePragmas = []struct{ name, value string }{
	{"foreign_keys", "foreign_keys(1)"},
	{"journal_mode", "journal_mode(WAL)"},
	{"busy_timeout", "busy_timeout(10000)"},
}

// withSQLitePragmas turns a bare path or file: URI into a DSN carrying
// foreign keys, WAL, the busy timeout and immediate locking. Pragmas and
// _txlock already present in dsn win.
func withSQLitePragmas(dsn string) (string, error) {
	path, query, _ := strings.Cut(dsn, "?")
	if path == "" {
		return "", fmt.Errorf("sqlite dsn: %w: empty path", common.ErrorInvalidInput)
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("sqlite dsn: %w: %v", common.ErrorInvalidInput, err)
	}

	have := make(map[string]bool)
	for _, p := range params["_pragma"] {
		name := p
		if i := strings.IndexAny(p, "(="); i >= 0 {
			name = p[:i]
		}
		have[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var parts []string
	if query != "" {
		parts = append(parts, query)
	}
	for _, p := range sqlitePragmas {
		if !have[p.name] {
			parts = append(parts, "_pragma="+p.value)
		}
	}
	if params.Get("_txlock") == "" {
		parts = append(parts, "_txlock=immediate")
	}

	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + strings.Join(parts, "&"), nil
}
