package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/adventures"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/characters"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/episodes"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/players"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/universes"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends the SQL repositories. The repositories share
// their statements across dialects; only migrations differ.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Characters(db dbx.DBTX) characters.Repository {
	return characters.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Adventures(db dbx.DBTX) adventures.Repository {
	return adventures.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Episodes(db dbx.DBTX) episodes.Repository {
	return episodes.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Players(db dbx.DBTX) players.Repository {
	return players.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Universes(db dbx.DBTX) universes.Repository {
	return universes.NewSQLRepository(db)
}

// gooseUp is a seam for testing the migration runner.
var gooseUp = func(ctx context.Context, p *goose.Provider) error {
	_, err := p.Up(ctx)
	return err
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseDialect, dir, err := migrationSource(m.dialect)
	if err != nil {
		return err
	}

	fsys, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations %s: %w", dir, err)
	}

	p, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if err := gooseUp(ctx, p); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func migrationSource(d dbx.Dialect) (goose.Dialect, string, error) {
	switch d {
	case dbx.DialectPostgres:
		return goose.DialectPostgres, "postgres", nil
	case dbx.DialectSQLite:
		return goose.DialectSQLite3, "sqlite", nil
	}
	return "", "", fmt.Errorf("no migrations for dialect %q", d)
}
