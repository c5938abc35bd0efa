package models

// Player is an authenticated actor. Authentication itself happens outside
// this module; the engine only uses the id as a reference.
type Player struct {
	ID             int64  `db:"id"`
	Handle         string `db:"handle"`
	CredentialHash string `db:"credential_hash"`
}

// PlayerRef is a player joined onto another record.
type PlayerRef struct {
	ID     int64
	Handle string
}

// Is reports whether the reference points at the given player.
// A nil reference matches nobody.
func (r *PlayerRef) Is(playerID int64) bool {
	return r != nil && r.ID == playerID
}

// Universe is a setting that scopes which characters and adventures may meet.
type Universe struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
