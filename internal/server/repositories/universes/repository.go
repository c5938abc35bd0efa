// Package universes stores the settings that scope characters and
// adventures.
package universes

import (
	"context"

	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, u *models.Universe) (*models.Universe, error)
	GetByID(ctx context.Context, id int64) (*models.Universe, error)
	List(ctx context.Context) ([]models.Universe, error)
}
