// Package episodes persists biography episodes and their approval authority.
package episodes

import (
	"context"

	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Episode) (*models.Episode, error)
	GetByID(ctx context.Context, id int64) (*models.Episode, error)
	ListForBiography(ctx context.Context, biographyID int64, validated bool) ([]models.Episode, error)
	ListPendingFor(ctx context.Context, gameMasterID int64) ([]models.Episode, error)
	Approve(ctx context.Context, episodeID, gameMasterID int64) error
	Delete(ctx context.Context, episodeID, ownerID int64) error
}
