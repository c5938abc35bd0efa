// Package policy holds the access rules of the lifecycle. The predicates are
// pure: they look only at the state loaded inside the caller's transaction and
// the acting player, and never touch the store.
package policy

import "github.com/dmitrijs2005/questkeeper/internal/server/models"

// MayRequestValidation: the owner of an unvalidated character may designate
// any other player as validator.
func MayRequestValidation(c *models.Character, actor, validator int64) bool {
	return c.IsOwnedBy(actor) && !c.Validated && validator != actor
}

// MayAcceptValidation: only the designated validator, and only once.
func MayAcceptValidation(c *models.Character, actor int64) bool {
	return !c.Validated && c.AwaitsValidationBy(actor)
}

// MayRequestTransfer: the owner of a validated character may propose a new
// game-master who is neither the owner nor the current game-master.
// Open-adventure membership is checked separately; it yields a conflict, not
// a denial.
func MayRequestTransfer(c *models.Character, actor, target int64) bool {
	return c.IsOwnedBy(actor) && c.Validated && target != actor && !c.IsMasteredBy(target)
}

// MayAcceptTransfer: only the pending transfer target.
func MayAcceptTransfer(c *models.Character, actor int64) bool {
	return c.Validated && c.AwaitsTransferTo(actor)
}

// MayGift: the owner may hand the character to anyone except themselves and
// the character's game-master.
func MayGift(c *models.Character, actor, destination int64) bool {
	return c.IsOwnedBy(actor) && destination != actor && !c.IsMasteredBy(destination)
}

// MayEditCharacter covers profession and portrait changes.
func MayEditCharacter(c *models.Character, actor int64) bool {
	return c.IsOwnedBy(actor)
}

// MayRecordEpisode: the owner writes the biography of a validated character.
func MayRecordEpisode(c *models.Character, actor int64) bool {
	return c.IsOwnedBy(actor) && c.Validated && c.GameMaster != nil
}

// MayApproveEpisode: the episode's current approval authority.
func MayApproveEpisode(e *models.Episode, actor int64) bool {
	return !e.Validated && e.GameMasterID != nil && *e.GameMasterID == actor
}

// MayManageAdventure: only the adventure's game-master changes it.
func MayManageAdventure(a *models.Adventure, actor int64) bool {
	return a.IsRunBy(actor)
}

// MayCreateAdventure: any player may run an adventure.
func MayCreateAdventure(actor int64) bool {
	return actor > 0
}

// CanEnroll reports whether c is eligible for a, ignoring memberships: the
// adventure is open, the character validated with no game-master transfer
// pending, and both sit in the same universe.
func CanEnroll(a *models.Adventure, c *models.Character) bool {
	return !a.Finished && c.Validated && c.PendingTransferID == nil &&
		c.Universe.ID == a.Universe.ID
}
