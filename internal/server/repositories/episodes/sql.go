package episodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

const columns = `id, biography_id, adventure_id, date_text, validated, game_master_id`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts an unvalidated episode.
func (r *SQLRepository) Create(ctx context.Context, e *models.Episode) (*models.Episode, error) {
	query :=
		`INSERT INTO episodes (biography_id, adventure_id, date_text, game_master_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		e.BiographyID, dbx.NullID(e.AdventureID), e.Date, dbx.NullID(e.GameMasterID)).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	e.Validated = false
	return e, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Episode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM episodes WHERE id = $1`, id)
	e, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return e, nil
}

func (r *SQLRepository) ListForBiography(ctx context.Context, biographyID int64, validated bool) ([]models.Episode, error) {
	return r.list(ctx,
		`SELECT `+columns+` FROM episodes
		 WHERE biography_id = $1 AND validated = $2
		 ORDER BY date_text, id`, biographyID, validated)
}

// ListPendingFor returns the episodes waiting for gameMasterID's approval.
func (r *SQLRepository) ListPendingFor(ctx context.Context, gameMasterID int64) ([]models.Episode, error) {
	return r.list(ctx,
		`SELECT `+columns+` FROM episodes
		 WHERE game_master_id = $1 AND validated = FALSE
		 ORDER BY id`, gameMasterID)
}

// Approve validates an episode; only its current approval authority may.
func (r *SQLRepository) Approve(ctx context.Context, episodeID, gameMasterID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE episodes SET validated = TRUE
		 WHERE id = $1 AND game_master_id = $2 AND validated = FALSE`,
		episodeID, gameMasterID)
	return r.expectOne(ctx, episodeID, res, err)
}

// Delete removes an unvalidated episode of a character owned by ownerID.
func (r *SQLRepository) Delete(ctx context.Context, episodeID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM episodes
		 WHERE id = $1 AND validated = FALSE
		 AND biography_id IN (SELECT biography_id FROM characters WHERE owner_id = $2)`,
		episodeID, ownerID)
	return r.expectOne(ctx, episodeID, res, err)
}

func (r *SQLRepository) expectOne(ctx context.Context, episodeID int64, res sql.Result, err error) error {
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
	if _, err := r.GetByID(ctx, episodeID); err != nil {
		return err
	}
	return common.ErrorAccessDenied
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]models.Episode, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.Episode, 0)
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Episode, error) {
	var (
		e           models.Episode
		adventureID sql.NullInt64
		gmID        sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.BiographyID, &adventureID, &e.Date, &e.Validated, &gmID); err != nil {
		return nil, err
	}
	e.AdventureID = dbx.IDPtr(adventureID)
	e.GameMasterID = dbx.IDPtr(gmID)
	return &e, nil
}
