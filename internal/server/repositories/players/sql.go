package players

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

func (r *SQLRepository) Create(ctx context.Context, p *models.Player) (*models.Player, error) {
	query :=
		`INSERT INTO players (handle, credential_hash)
		 VALUES ($1, $2)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, p.Handle, p.CredentialHash).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return p, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	return r.get(ctx, `SELECT id, handle, credential_hash FROM players WHERE id = $1`, id)
}

func (r *SQLRepository) GetByHandle(ctx context.Context, handle string) (*models.Player, error) {
	return r.get(ctx, `SELECT id, handle, credential_hash FROM players WHERE handle = $1`, handle)
}

func (r *SQLRepository) get(ctx context.Context, query string, arg any) (*models.Player, error) {
	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Handle, &p.CredentialHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return p, nil
}
