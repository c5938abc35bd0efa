package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	err error
}

func (f *fakePresigner) PresignPut(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/put/" + key, nil
}

func (f *fakePresigner) PresignGet(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/get/" + key, nil
}

// fixture is a migrated SQLite store with three players and two universes.
type fixture struct {
	gw    *dbx.Gateway
	repos *repomanager.SQLRepositoryManager
	rec   *metrics.Transitions

	characters *CharacterService
	adventures *AdventureService
	episodes   *EpisodeService
	presigner  *fakePresigner

	alice, bob, carol int64
	eldra, ys         int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	gw, err := dbx.Open(ctx, dbx.DialectSQLite, dbx.SQLiteDSN(filepath.Join(t.TempDir(), "quest.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	repos := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, repos.RunMigrations(ctx, gw.DB()))

	f := &fixture{
		gw:        gw,
		repos:     repos,
		rec:       metrics.NewTransitions(prometheus.NewRegistry()),
		presigner: &fakePresigner{},
	}
	log := logging.Discard()
	f.characters = NewCharacterService(gw, repos, f.presigner, log, f.rec)
	f.adventures = NewAdventureService(gw, repos, log, f.rec)
	f.episodes = NewEpisodeService(gw, repos, log, f.rec)

	players := repos.Players(gw.DB())
	for _, p := range []struct {
		handle string
		id     *int64
	}{{"alice", &f.alice}, {"bob", &f.bob}, {"carol", &f.carol}} {
		got, err := players.Create(ctx, &models.Player{Handle: p.handle})
		require.NoError(t, err)
		*p.id = got.ID
	}

	universes := repos.Universes(gw.DB())
	for _, u := range []struct {
		name string
		id   *int64
	}{{"Eldra", &f.eldra}, {"Ys", &f.ys}} {
		got, err := universes.Create(ctx, &models.Universe{Name: u.name})
		require.NoError(t, err)
		*u.id = got.ID
	}
	return f
}

// validatedCharacter creates a character of owner in universe, validated by gm.
func (f *fixture) validatedCharacter(t *testing.T, owner, gm, universe int64, name string) *models.Character {
	t.Helper()
	ctx := context.Background()

	c, err := f.characters.Create(ctx, owner, NewCharacter{Name: name, UniverseID: universe, Biography: "bio of " + name})
	require.NoError(t, err)
	_, err = f.characters.RequestValidation(ctx, owner, c.ID, gm)
	require.NoError(t, err)
	c, err = f.characters.AcceptValidation(ctx, gm, c.ID)
	require.NoError(t, err)
	return c
}

func (f *fixture) adventure(t *testing.T, gm, universe int64, title string) *models.Adventure {
	t.Helper()
	a, err := f.adventures.Create(context.Background(), gm, NewAdventure{Title: title, UniverseID: universe})
	require.NoError(t, err)
	return a
}

// assertPendingRequestsConsistent checks the pending-request rules on every
// stored character.
func (f *fixture) assertPendingRequestsConsistent(t *testing.T) {
	t.Helper()
	var bad int
	err := f.gw.DB().QueryRow(
		`SELECT COUNT(*) FROM characters
		 WHERE (pending_validator_id IS NOT NULL AND validated = TRUE)
		    OR (pending_transfer_id IS NOT NULL AND validated = FALSE)
		    OR owner_id IS NULL`).Scan(&bad)
	require.NoError(t, err)
	require.Zero(t, bad, "pending request on an inconsistent character")

	err = f.gw.DB().QueryRow(
		`SELECT COUNT(*) FROM (
		   SELECT p.character_id FROM participations p
		   JOIN adventures a ON a.id = p.adventure_id
		   WHERE a.finished = FALSE
		   GROUP BY p.character_id HAVING COUNT(*) > 1)`).Scan(&bad)
	require.NoError(t, err)
	require.Zero(t, bad, "character enrolled in two open adventures")

	err = f.gw.DB().QueryRow(
		`SELECT COUNT(*) FROM characters c
		 WHERE c.pending_transfer_id IS NOT NULL
		 AND EXISTS (SELECT 1 FROM participations p
		             JOIN adventures a ON a.id = p.adventure_id
		             WHERE p.character_id = c.id AND a.finished = FALSE)`).Scan(&bad)
	require.NoError(t, err)
	require.Zero(t, bad, "transfer pending on an enrolled character")
}
