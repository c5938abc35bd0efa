package grpc

import "github.com/dmitrijs2005/questkeeper/internal/server/models"

// Request and reply messages of questkeeper.Lifecycle. They travel as JSON.

type Empty struct{}

type CharacterRequest struct {
	CharacterID int64 `json:"character_id"`
}

type CreateCharacterRequest struct {
	Name       string `json:"name"`
	Birth      string `json:"birth"`
	Profession string `json:"profession"`
	UniverseID int64  `json:"universe_id"`
	Biography  string `json:"biography"`
}

// CharacterPlayerRequest names a character and a second player: the
// validator, the transfer target or the gift destination.
type CharacterPlayerRequest struct {
	CharacterID int64 `json:"character_id"`
	PlayerID    int64 `json:"player_id"`
}

type UpdateProfessionRequest struct {
	CharacterID int64  `json:"character_id"`
	Profession  string `json:"profession"`
}

type Player struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
}

type Universe struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CharacterReply struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Birth              string   `json:"birth"`
	Profession         string   `json:"profession"`
	Portrait           string   `json:"portrait"`
	Universe           Universe `json:"universe"`
	Owner              *Player  `json:"owner"`
	GameMaster         *Player  `json:"game_master"`
	Validated          bool     `json:"validated"`
	PendingValidatorID *int64   `json:"pending_validator_id"`
	PendingTransferID  *int64   `json:"pending_transfer_id"`
}

type CharacterSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Profession string `json:"profession"`
}

type CharacterListReply struct {
	Characters []CharacterSummary `json:"characters"`
}

type CreateAdventureRequest struct {
	Title      string `json:"title"`
	Synopsis   string `json:"synopsis"`
	Place      string `json:"place"`
	Date       string `json:"date"`
	UniverseID int64  `json:"universe_id"`
}

type AdventureRequest struct {
	AdventureID int64 `json:"adventure_id"`
}

type RosterRequest struct {
	AdventureID int64 `json:"adventure_id"`
	CharacterID int64 `json:"character_id"`
}

type FinishAdventureRequest struct {
	AdventureID   int64  `json:"adventure_id"`
	ClosingEvents string `json:"closing_events"`
}

type AdventureReply struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Synopsis      string             `json:"synopsis"`
	Place         string             `json:"place"`
	Date          string             `json:"date"`
	Universe      Universe           `json:"universe"`
	GameMaster    Player             `json:"game_master"`
	Finished      bool               `json:"finished"`
	ClosingEvents string             `json:"closing_events"`
	Roster        []CharacterSummary `json:"roster"`
}

type AdventureSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Finished bool   `json:"finished"`
}

type AdventureListReply struct {
	Adventures []AdventureSummary `json:"adventures"`
}

type RecordEpisodeRequest struct {
	CharacterID int64  `json:"character_id"`
	AdventureID *int64 `json:"adventure_id"`
	Date        string `json:"date"`
}

type EpisodeRequest struct {
	EpisodeID int64 `json:"episode_id"`
}

type EpisodeReply struct {
	ID           int64  `json:"id"`
	BiographyID  int64  `json:"biography_id"`
	AdventureID  *int64 `json:"adventure_id"`
	Date         string `json:"date"`
	Validated    bool   `json:"validated"`
	GameMasterID *int64 `json:"game_master_id"`
}

type EpisodeListReply struct {
	Episodes []EpisodeReply `json:"episodes"`
}

type PortraitUploadReply struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type PortraitURLReply struct {
	URL string `json:"url"`
}

func playerFrom(r *models.PlayerRef) *Player {
	if r == nil {
		return nil
	}
	return &Player{ID: r.ID, Handle: r.Handle}
}

func characterReply(c *models.Character) *CharacterReply {
	return &CharacterReply{
		ID:                 c.ID,
		Name:               c.Name,
		Birth:              c.Birth,
		Profession:         c.Profession,
		Portrait:           c.Portrait,
		Universe:           Universe{ID: c.Universe.ID, Name: c.Universe.Name},
		Owner:              playerFrom(c.Owner),
		GameMaster:         playerFrom(c.GameMaster),
		Validated:          c.Validated,
		PendingValidatorID: c.PendingValidatorID,
		PendingTransferID:  c.PendingTransferID,
	}
}

func characterSummaries(in []models.CharacterSummary) []CharacterSummary {
	out := make([]CharacterSummary, 0, len(in))
	for _, c := range in {
		out = append(out, CharacterSummary{ID: c.ID, Name: c.Name, Profession: c.Profession})
	}
	return out
}

func adventureReply(a *models.Adventure) *AdventureReply {
	return &AdventureReply{
		ID:            a.ID,
		Title:         a.Title,
		Synopsis:      a.Synopsis,
		Place:         a.Place,
		Date:          a.Date,
		Universe:      Universe{ID: a.Universe.ID, Name: a.Universe.Name},
		GameMaster:    Player{ID: a.GameMaster.ID, Handle: a.GameMaster.Handle},
		Finished:      a.Finished,
		ClosingEvents: a.ClosingEvents,
		Roster:        characterSummaries(a.Roster),
	}
}

func adventureSummaries(in []models.AdventureSummary) []AdventureSummary {
	out := make([]AdventureSummary, 0, len(in))
	for _, a := range in {
		out = append(out, AdventureSummary{ID: a.ID, Title: a.Title, Finished: a.Finished})
	}
	return out
}

func episodeReply(e *models.Episode) *EpisodeReply {
	return &EpisodeReply{
		ID:           e.ID,
		BiographyID:  e.BiographyID,
		AdventureID:  e.AdventureID,
		Date:         e.Date,
		Validated:    e.Validated,
		GameMasterID: e.GameMasterID,
	}
}
