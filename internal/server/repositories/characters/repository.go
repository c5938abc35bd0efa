// Package characters persists characters and encodes their lifecycle
// transitions. Every transition is a guarded write: the precondition is part
// of the statement that mutates the row, so it is re-checked atomically in the
// caller's transaction whatever the caller read before.
package characters

import (
	"context"

	"github.com/dmitrijs2005/questkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Character, biography string) (*models.Character, error)
	GetByID(ctx context.Context, id int64) (*models.Character, error)

	ListAll(ctx context.Context) ([]models.CharacterSummary, error)
	ListOwnedBy(ctx context.Context, playerID int64) ([]models.CharacterSummary, error)
	ListMasteredBy(ctx context.Context, playerID int64) ([]models.CharacterSummary, error)
	ListPendingValidationFor(ctx context.Context, playerID int64) ([]models.CharacterSummary, error)
	ListPendingTransferFor(ctx context.Context, playerID int64) ([]models.CharacterSummary, error)
	ListEnrollmentCandidates(ctx context.Context, gameMasterID, universeID int64) ([]models.CharacterSummary, error)

	RequestValidation(ctx context.Context, characterID, validatorID, ownerID int64) error
	AcceptValidation(ctx context.Context, characterID, actorID int64) error
	RequestTransfer(ctx context.Context, characterID, targetID, ownerID int64) error
	AcceptTransfer(ctx context.Context, characterID, actorID int64) error
	Gift(ctx context.Context, characterID, destinationID, ownerID int64) error
	UpdateProfession(ctx context.Context, characterID int64, profession string, ownerID int64) error
	SetPortrait(ctx context.Context, characterID int64, key string, ownerID int64) error

	IsEnrolledInOpenAdventure(ctx context.Context, characterID int64) (bool, error)
}
