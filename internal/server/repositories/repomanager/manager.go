// Package repomanager vends repositories bound to a DBTX (the pool or an open
// transaction) and applies the schema migrations for the configured dialect.
// A manager is built once at process start and shared by the services.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/adventures"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/characters"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/episodes"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/players"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/universes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Characters(db dbx.DBTX) characters.Repository
	Adventures(db dbx.DBTX) adventures.Repository
	Episodes(db dbx.DBTX) episodes.Repository
	Players(db dbx.DBTX) players.Repository
	Universes(db dbx.DBTX) universes.Repository
}
