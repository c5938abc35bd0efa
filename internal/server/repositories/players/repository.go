// Package players stores the player records referenced by every lifecycle
// check. Authentication and credential hashing happen elsewhere.
package players

import (
	"context"

	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Player) (*models.Player, error)
	GetByID(ctx context.Context, id int64) (*models.Player, error)
	GetByHandle(ctx context.Context, handle string) (*models.Player, error)
}
