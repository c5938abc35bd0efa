package universes

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

func (r *SQLRepository) Create(ctx context.Context, u *models.Universe) (*models.Universe, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO universes (name) VALUES ($1) RETURNING id`, u.Name).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return u, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Universe, error) {
	u := &models.Universe{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM universes WHERE id = $1`, id).Scan(&u.ID, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return u, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Universe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM universes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	result := make([]models.Universe, 0)
	for rows.Next() {
		var u models.Universe
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}
