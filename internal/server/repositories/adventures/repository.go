// Package adventures persists adventures and their rosters. Roster changes
// are guarded writes that re-check the adventure and character state inside
// the caller's transaction.
package adventures

import (
	"context"

	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Adventure) (*models.Adventure, error)
	GetByID(ctx context.Context, id int64) (*models.Adventure, error)

	ListAll(ctx context.Context) ([]models.AdventureSummary, error)
	ListFor(ctx context.Context, playerID int64) ([]models.AdventureSummary, error)
	ListMasteredBy(ctx context.Context, playerID int64) ([]models.AdventureSummary, error)
	ListForCharacter(ctx context.Context, characterID int64) ([]models.AdventureSummary, error)

	IsMember(ctx context.Context, adventureID, characterID int64) (bool, error)
	Enroll(ctx context.Context, adventureID, characterID, gameMasterID int64) error
	Remove(ctx context.Context, adventureID, characterID, gameMasterID int64) error
	Finish(ctx context.Context, adventureID int64, closingEvents string, gameMasterID int64) error
	Delete(ctx context.Context, adventureID, gameMasterID int64) error
}
