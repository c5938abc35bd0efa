package adventures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, a *models.Adventure) (*models.Adventure, error) {
	query :=
		`INSERT INTO adventures (title, synopsis, place, date_text, universe_id, game_master_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Synopsis, a.Place, a.Date, a.Universe.ID, a.GameMaster.ID).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	a.Finished = false
	a.ClosingEvents = ""
	a.Roster = []models.CharacterSummary{}
	return a, nil
}

// GetByID loads the adventure with its universe, game-master and roster.
func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Adventure, error) {
	a, err := r.header(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.profession
		 FROM participations p
		 JOIN characters c ON c.id = p.character_id
		 WHERE p.adventure_id = $1
		 ORDER BY p.enrolled_at, c.id`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	a.Roster = make([]models.CharacterSummary, 0)
	for rows.Next() {
		var s models.CharacterSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Profession); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		a.Roster = append(a.Roster, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return a, nil
}

func (r *SQLRepository) header(ctx context.Context, id int64) (*models.Adventure, error) {
	query :=
		`SELECT a.id, a.title, a.synopsis, a.place, a.date_text,
		        u.id, u.name, g.id, g.handle, a.finished, a.closing_events
		 FROM adventures a
		 JOIN universes u ON u.id = a.universe_id
		 JOIN players g ON g.id = a.game_master_id
		 WHERE a.id = $1`

	a := &models.Adventure{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Title, &a.Synopsis, &a.Place, &a.Date,
		&a.Universe.ID, &a.Universe.Name, &a.GameMaster.ID, &a.GameMaster.Handle,
		&a.Finished, &a.ClosingEvents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return a, nil
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]models.AdventureSummary, error) {
	return r.list(ctx, `SELECT id, title, finished FROM adventures ORDER BY id`)
}

// ListFor returns the adventures in which playerID owns an enrolled character.
func (r *SQLRepository) ListFor(ctx context.Context, playerID int64) ([]models.AdventureSummary, error) {
	return r.list(ctx,
		`SELECT a.id, a.title, a.finished FROM adventures a
		 WHERE EXISTS (SELECT 1 FROM participations p
		               JOIN characters c ON c.id = p.character_id
		               WHERE p.adventure_id = a.id AND c.owner_id = $1)
		 ORDER BY a.id`, playerID)
}

func (r *SQLRepository) ListMasteredBy(ctx context.Context, playerID int64) ([]models.AdventureSummary, error) {
	return r.list(ctx,
		`SELECT id, title, finished FROM adventures
		 WHERE game_master_id = $1
		 ORDER BY id`, playerID)
}

func (r *SQLRepository) ListForCharacter(ctx context.Context, characterID int64) ([]models.AdventureSummary, error) {
	return r.list(ctx,
		`SELECT a.id, a.title, a.finished FROM adventures a
		 JOIN participations p ON p.adventure_id = a.id
		 WHERE p.character_id = $1
		 ORDER BY a.id`, characterID)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]models.AdventureSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.AdventureSummary, 0)
	for rows.Next() {
		var s models.AdventureSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Finished); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}

func (r *SQLRepository) IsMember(ctx context.Context, adventureID, characterID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM participations WHERE adventure_id = $1 AND character_id = $2`,
		adventureID, characterID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return true, nil
}

// Enroll adds the character to the roster. The insert only happens when the
// adventure is open and run by gameMasterID, the character is validated with
// no transfer pending and shares the adventure's universe, and the character
// holds no membership in any open adventure (this one included).
func (r *SQLRepository) Enroll(ctx context.Context, adventureID, characterID, gameMasterID int64) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO participations (adventure_id, character_id)
		 SELECT a.id, c.id
		 FROM adventures a
		 JOIN characters c ON c.universe_id = a.universe_id
		 WHERE a.id = $1 AND c.id = $2 AND a.game_master_id = $3
		 AND a.finished = FALSE AND c.validated = TRUE AND c.pending_transfer_id IS NULL
		 AND NOT EXISTS (SELECT 1 FROM participations p
		                 JOIN adventures o ON o.id = p.adventure_id
		                 WHERE p.character_id = c.id AND o.finished = FALSE)`,
		adventureID, characterID, gameMasterID)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	} else if n == 1 {
		return nil
	}

	if err := r.checkManageable(ctx, adventureID, gameMasterID); err != nil {
		return err
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM characters WHERE id = $1`, characterID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return common.ErrorConflict
}

// Remove drops the character from the roster of an open adventure.
func (r *SQLRepository) Remove(ctx context.Context, adventureID, characterID, gameMasterID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM participations
		 WHERE adventure_id = $1 AND character_id = $2
		 AND EXISTS (SELECT 1 FROM adventures a
		             WHERE a.id = participations.adventure_id
		             AND a.game_master_id = $3 AND a.finished = FALSE)`,
		adventureID, characterID, gameMasterID)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	} else if n == 1 {
		return nil
	}

	if err := r.checkManageable(ctx, adventureID, gameMasterID); err != nil {
		return err
	}
	return common.ErrorNotFound
}

// Finish closes the adventure for good and records its closing events.
func (r *SQLRepository) Finish(ctx context.Context, adventureID int64, closingEvents string, gameMasterID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE adventures SET finished = TRUE, closing_events = $1
		 WHERE id = $2 AND game_master_id = $3 AND finished = FALSE`,
		closingEvents, adventureID, gameMasterID)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	} else if n == 1 {
		return nil
	}

	if err := r.checkManageable(ctx, adventureID, gameMasterID); err != nil {
		return err
	}
	return common.ErrorConflict
}

// Delete removes an open adventure together with its roster.
func (r *SQLRepository) Delete(ctx context.Context, adventureID, gameMasterID int64) error {
	if err := r.checkManageable(ctx, adventureID, gameMasterID); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM participations WHERE adventure_id = $1`, adventureID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM adventures WHERE id = $1 AND game_master_id = $2 AND finished = FALSE`,
		adventureID, gameMasterID)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	} else if n != 1 {
		return common.ErrorConflict
	}
	return nil
}

// checkManageable reports why gameMasterID may not change the adventure:
// NotFound, AccessDenied, or Conflict once it is finished.
func (r *SQLRepository) checkManageable(ctx context.Context, adventureID, gameMasterID int64) error {
	var (
		owner    int64
		finished bool
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT game_master_id, finished FROM adventures WHERE id = $1`,
		adventureID).Scan(&owner, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	if owner != gameMasterID {
		return common.ErrorAccessDenied
	}
	if finished {
		return common.ErrorConflict
	}
	return nil
}
