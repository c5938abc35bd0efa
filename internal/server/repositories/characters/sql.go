package characters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

// openMembership matches a participation of characters.id in an adventure
// that is not finished yet.
const openMembership = `EXISTS (SELECT 1 FROM participations p
		 JOIN adventures a ON a.id = p.adventure_id
		 WHERE p.character_id = characters.id AND a.finished = FALSE)`

// SQLRepository works on both PostgreSQL and SQLite; it only uses $n
// placeholders and standard SQL.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts the biography and the character. Both statements must run
// on the same transaction handle.
func (r *SQLRepository) Create(ctx context.Context, c *models.Character, biography string) (*models.Character, error) {
	if c.Owner == nil {
		return nil, fmt.Errorf("create character: %w: no owner", common.ErrorInvalidInput)
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO biographies (body) VALUES ($1) RETURNING id`,
		biography).Scan(&c.BiographyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	query :=
		`INSERT INTO characters (name, birth, profession, portrait, universe_id, biography_id, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`

	err = r.db.QueryRowContext(ctx, query,
		c.Name, c.Birth, c.Profession, c.Portrait, c.Universe.ID, c.BiographyID, c.Owner.ID).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	c.Validated = false
	c.GameMaster = nil
	c.PendingValidatorID = nil
	c.PendingTransferID = nil
	return c, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	query :=
		`SELECT c.id, c.name, c.birth, c.profession, c.portrait, c.biography_id,
		        u.id, u.name,
		        c.owner_id, o.handle, c.game_master_id, g.handle,
		        c.validated, c.pending_validator_id, c.pending_transfer_id
		 FROM characters c
		 JOIN universes u ON u.id = c.universe_id
		 LEFT JOIN players o ON o.id = c.owner_id
		 LEFT JOIN players g ON g.id = c.game_master_id
		 WHERE c.id = $1`

	var (
		c                    models.Character
		ownerID, gmID        sql.NullInt64
		ownerName, gmName    sql.NullString
		validatorID, transID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Birth, &c.Profession, &c.Portrait, &c.BiographyID,
		&c.Universe.ID, &c.Universe.Name,
		&ownerID, &ownerName, &gmID, &gmName,
		&c.Validated, &validatorID, &transID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	if ownerID.Valid {
		c.Owner = &models.PlayerRef{ID: ownerID.Int64, Handle: ownerName.String}
	}
	if gmID.Valid {
		c.GameMaster = &models.PlayerRef{ID: gmID.Int64, Handle: gmName.String}
	}
	c.PendingValidatorID = dbx.IDPtr(validatorID)
	c.PendingTransferID = dbx.IDPtr(transID)

	return &c, nil
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]models.CharacterSummary, error) {
	return r.list(ctx, `SELECT id, name, profession FROM characters ORDER BY name, id`)
}

func (r *SQLRepository) ListOwnedBy(ctx context.Context, playerID int64) ([]models.CharacterSummary, error) {
	return r.list(ctx,
		`SELECT id, name, profession FROM characters
		 WHERE owner_id = $1
		 ORDER BY name, id`, playerID)
}

func (r *SQLRepository) ListMasteredBy(ctx context.Context, playerID int64) ([]models.CharacterSummary, error) {
	return r.list(ctx,
		`SELECT id, name, profession FROM characters
		 WHERE game_master_id = $1 AND validated = TRUE
		 ORDER BY name, id`, playerID)
}

func (r *SQLRepository) ListPendingValidationFor(ctx context.Context, playerID int64) ([]models.CharacterSummary, error) {
	return r.list(ctx,
		`SELECT id, name, profession FROM characters
		 WHERE pending_validator_id = $1 AND validated = FALSE
		 ORDER BY name, id`, playerID)
}

func (r *SQLRepository) ListPendingTransferFor(ctx context.Context, playerID int64) ([]models.CharacterSummary, error) {
	return r.list(ctx,
		`SELECT id, name, profession FROM characters
		 WHERE pending_transfer_id = $1 AND validated = TRUE
		 ORDER BY name, id`, playerID)
}

// ListEnrollmentCandidates returns the validated characters of gameMasterID in
// universeID that hold no membership in an open adventure. The filter is an
// anti-join evaluated by the store, never by the caller.
func (r *SQLRepository) ListEnrollmentCandidates(ctx context.Context, gameMasterID, universeID int64) ([]models.CharacterSummary, error) {
	return r.list(ctx,
		`SELECT id, name, profession FROM characters
		 WHERE game_master_id = $1 AND universe_id = $2 AND validated = TRUE
		 AND NOT `+openMembership+`
		 ORDER BY name, id`, gameMasterID, universeID)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]models.CharacterSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.CharacterSummary, 0)
	for rows.Next() {
		var s models.CharacterSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Profession); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}

// RequestValidation designates validatorID as the game-master asked to
// validate the character. Only the owner of an unvalidated character may ask,
// and never themselves.
func (r *SQLRepository) RequestValidation(ctx context.Context, characterID, validatorID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters SET pending_validator_id = $1
		 WHERE id = $2 AND owner_id = $3 AND owner_id <> $1 AND validated = FALSE`,
		validatorID, characterID, ownerID)

	return r.expectOne(ctx, characterID, res, err, common.ErrorAccessDenied)
}

// AcceptValidation is a one-way transition: the designated validator becomes
// the game-master and the pending request is cleared.
func (r *SQLRepository) AcceptValidation(ctx context.Context, characterID, actorID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters
		 SET validated = TRUE, game_master_id = pending_validator_id, pending_validator_id = NULL
		 WHERE id = $1 AND pending_validator_id = $2 AND validated = FALSE`,
		characterID, actorID)

	return r.expectOne(ctx, characterID, res, err, common.ErrorAccessDenied)
}

// RequestTransfer asks targetID to take over as game-master. The character
// must be validated and free of open adventures; the target must differ from
// both the owner and the current game-master.
func (r *SQLRepository) RequestTransfer(ctx context.Context, characterID, targetID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters SET pending_transfer_id = $1
		 WHERE id = $2 AND owner_id = $3 AND owner_id <> $1 AND validated = TRUE
		 AND (game_master_id IS NULL OR game_master_id <> $1)
		 AND NOT `+openMembership,
		targetID, characterID, ownerID)

	return r.expectOneOrBusy(ctx, characterID, res, err)
}

// AcceptTransfer moves game-mastership to the pending target and, on the same
// handle, hands the approval of every in-flight episode of the character's
// biography to the new game-master.
func (r *SQLRepository) AcceptTransfer(ctx context.Context, characterID, actorID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters
		 SET game_master_id = pending_transfer_id, pending_transfer_id = NULL
		 WHERE id = $1 AND pending_transfer_id = $2 AND validated = TRUE
		 AND NOT `+openMembership,
		characterID, actorID)
	if err := r.expectOneOrBusy(ctx, characterID, res, err); err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE episodes SET game_master_id = $1
		 WHERE validated = FALSE AND game_master_id IS NOT NULL
		 AND biography_id = (SELECT biography_id FROM characters WHERE id = $2)`,
		actorID, characterID)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// Gift hands the character to destinationID. Pending validation and transfer
// requests are dropped with the old ownership.
func (r *SQLRepository) Gift(ctx context.Context, characterID, destinationID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters
		 SET owner_id = $1, pending_validator_id = NULL, pending_transfer_id = NULL
		 WHERE id = $2 AND owner_id = $3 AND owner_id <> $1
		 AND (game_master_id IS NULL OR game_master_id <> $1)`,
		destinationID, characterID, ownerID)

	return r.expectOne(ctx, characterID, res, err, common.ErrorAccessDenied)
}

func (r *SQLRepository) UpdateProfession(ctx context.Context, characterID int64, profession string, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters SET profession = $1 WHERE id = $2 AND owner_id = $3`,
		profession, characterID, ownerID)

	return r.expectOne(ctx, characterID, res, err, common.ErrorAccessDenied)
}

func (r *SQLRepository) SetPortrait(ctx context.Context, characterID int64, key string, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE characters SET portrait = $1 WHERE id = $2 AND owner_id = $3`,
		key, characterID, ownerID)

	return r.expectOne(ctx, characterID, res, err, common.ErrorAccessDenied)
}

func (r *SQLRepository) IsEnrolledInOpenAdventure(ctx context.Context, characterID int64) (bool, error) {
	query :=
		`SELECT 1 FROM participations p
		 JOIN adventures a ON a.id = p.adventure_id
		 WHERE p.character_id = $1 AND a.finished = FALSE
		 LIMIT 1`

	var one int
	err := r.db.QueryRowContext(ctx, query, characterID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return true, nil
}

func (r *SQLRepository) exists(ctx context.Context, characterID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM characters WHERE id = $1`, characterID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return true, nil
}

// expectOne turns a guarded write that touched no row into NotFound when the
// character is missing and into denied otherwise.
func (r *SQLRepository) expectOne(ctx context.Context, characterID int64, res sql.Result, err error, denied error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	if n == 1 {
		return nil
	}

	ok, err := r.exists(ctx, characterID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return denied
}

// expectOneOrBusy is expectOne for transfers, which additionally fail with
// Conflict while the character sits in an open adventure.
func (r *SQLRepository) expectOneOrBusy(ctx context.Context, characterID int64, res sql.Result, err error) error {
	denied := common.ErrorAccessDenied
	if err == nil {
		if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
			enrolled, eerr := r.IsEnrolledInOpenAdventure(ctx, characterID)
			if eerr != nil {
				return eerr
			}
			if enrolled {
				denied = common.ErrorConflict
			}
		}
	}
	return r.expectOne(ctx, characterID, res, err, denied)
}
