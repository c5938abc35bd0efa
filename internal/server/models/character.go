package models

// Character is a persona owned by one player and, once validated,
// administered by one game-master.
//
// Invariants kept by the lifecycle:
//   - PendingValidatorID set implies Validated == false.
//   - PendingTransferID set implies Validated == true.
//   - Universe never changes after creation.
type Character struct {
	ID          int64
	Name        string
	Birth       string
	Profession  string
	Portrait    string
	BiographyID int64
	Universe    Universe

	Owner      *PlayerRef
	GameMaster *PlayerRef
	Validated  bool

	PendingValidatorID *int64
	PendingTransferID  *int64
}

// IsOwnedBy reports whether playerID currently owns the character.
func (c *Character) IsOwnedBy(playerID int64) bool {
	return c.Owner.Is(playerID)
}

// IsMasteredBy reports whether playerID is the character's game-master.
func (c *Character) IsMasteredBy(playerID int64) bool {
	return c.GameMaster.Is(playerID)
}

// AwaitsValidationBy reports whether playerID is the designated validator.
func (c *Character) AwaitsValidationBy(playerID int64) bool {
	return c.PendingValidatorID != nil && *c.PendingValidatorID == playerID
}

// AwaitsTransferTo reports whether playerID is the pending transfer target.
func (c *Character) AwaitsTransferTo(playerID int64) bool {
	return c.PendingTransferID != nil && *c.PendingTransferID == playerID
}

// CharacterSummary is the projection returned by listings.
type CharacterSummary struct {
	ID         int64
	Name       string
	Profession string
}

// Biography holds the free text attached to a character.
type Biography struct {
	ID   int64
	Text string
}
