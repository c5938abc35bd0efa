package models

// Adventure is a game session run by one game-master within one universe.
// Once Finished, its roster is frozen and it can no longer be deleted.
type Adventure struct {
	ID            int64
	Title         string
	Synopsis      string
	Place         string
	Date          string
	Universe      Universe
	GameMaster    PlayerRef
	Finished      bool
	ClosingEvents string

	// Roster is ordered by enrollment, ties broken by character id.
	Roster []CharacterSummary
}

// IsRunBy reports whether playerID is the adventure's game-master.
func (a *Adventure) IsRunBy(playerID int64) bool {
	return a.GameMaster.ID == playerID
}

// AdventureSummary is the projection returned by listings.
type AdventureSummary struct {
	ID       int64
	Title    string
	Finished bool
}
