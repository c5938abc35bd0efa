package models

// Episode is a biography entry awaiting (or past) game-master approval.
// GameMasterID is the approval authority while the episode is unvalidated.
type Episode struct {
	ID           int64
	BiographyID  int64
	AdventureID  *int64
	Date         string
	Validated    bool
	GameMasterID *int64
}
