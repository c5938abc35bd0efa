package services

import (
	"context"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/dmitrijs2005/questkeeper/internal/server/policy"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
)

type NewAdventure struct {
	Title      string `validate:"required,max=200"`
	Synopsis   string `validate:"max=20000"`
	Place      string `validate:"max=200"`
	Date       string `validate:"max=100"`
	UniverseID int64  `validate:"gt=0"`
}

// AdventureService runs adventures and their rosters.
type AdventureService struct {
	engine
}

func NewAdventureService(store Store, repos repomanager.RepositoryManager, log logging.Logger, rec metrics.Recorder) *AdventureService {
	return &AdventureService{engine: newEngine(store, repos, log, rec)}
}

// Create opens an adventure run by actor.
func (s *AdventureService) Create(ctx context.Context, actor int64, in NewAdventure) (*models.Adventure, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !policy.MayCreateAdventure(actor) {
		return nil, common.ErrorAccessDenied
	}

	var out *models.Adventure
	err := s.transition(ctx, "create_adventure", actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Adventures(tx)
		a, err := repo.Create(ctx, &models.Adventure{
			Title:      in.Title,
			Synopsis:   in.Synopsis,
			Place:      in.Place,
			Date:       in.Date,
			Universe:   models.Universe{ID: in.UniverseID},
			GameMaster: models.PlayerRef{ID: actor},
		})
		if err != nil {
			return err
		}
		out, err = repo.GetByID(ctx, a.ID)
		return err
	}, "universe_id", in.UniverseID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdventureService) Get(ctx context.Context, id int64) (*models.Adventure, error) {
	var out *models.Adventure
	err := s.read(ctx, "get_adventure", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Adventures(db).GetByID(ctx, id)
		return err
	})
	return out, err
}

func (s *AdventureService) ListAll(ctx context.Context) ([]models.AdventureSummary, error) {
	var out []models.AdventureSummary
	err := s.read(ctx, "list_adventures", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Adventures(db).ListAll(ctx)
		return err
	})
	return out, err
}

// ListFor returns the adventures in which actor has an enrolled character.
func (s *AdventureService) ListFor(ctx context.Context, actor int64) ([]models.AdventureSummary, error) {
	var out []models.AdventureSummary
	err := s.read(ctx, "list_player_adventures", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Adventures(db).ListFor(ctx, actor)
		return err
	})
	return out, err
}

func (s *AdventureService) ListMastered(ctx context.Context, actor int64) ([]models.AdventureSummary, error) {
	var out []models.AdventureSummary
	err := s.read(ctx, "list_mastered_adventures", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Adventures(db).ListMasteredBy(ctx, actor)
		return err
	})
	return out, err
}

func (s *AdventureService) ListForCharacter(ctx context.Context, characterID int64) ([]models.AdventureSummary, error) {
	var out []models.AdventureSummary
	err := s.read(ctx, "list_character_adventures", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Adventures(db).ListForCharacter(ctx, characterID)
		return err
	})
	return out, err
}

// ListEnrollmentCandidates returns the characters of actor's table that could
// join the adventure right now.
func (s *AdventureService) ListEnrollmentCandidates(ctx context.Context, actor, adventureID int64) ([]models.CharacterSummary, error) {
	var out []models.CharacterSummary
	err := s.read(ctx, "list_enrollment_candidates", func(ctx context.Context, db dbx.DBTX) error {
		a, err := s.repos.Adventures(db).GetByID(ctx, adventureID)
		if err != nil {
			return err
		}
		if !policy.MayManageAdventure(a, actor) {
			return common.ErrorAccessDenied
		}
		out, err = s.repos.Characters(db).ListEnrollmentCandidates(ctx, actor, a.Universe.ID)
		return err
	})
	return out, err
}

// Enroll adds the character to the roster. The character must be validated,
// share the adventure's universe, and hold no other open membership.
func (s *AdventureService) Enroll(ctx context.Context, actor, adventureID, characterID int64) (*models.Adventure, error) {
	return s.mutate(ctx, "enroll_character", actor, adventureID, func(ctx context.Context, tx dbx.DBTX, a *models.Adventure) error {
		c, err := s.repos.Characters(tx).GetByID(ctx, characterID)
		if err != nil {
			return err
		}
		if !policy.CanEnroll(a, c) {
			return common.ErrorConflict
		}
		if err := ensureFree(ctx, s.repos.Characters(tx), characterID); err != nil {
			return err
		}
		return s.repos.Adventures(tx).Enroll(ctx, adventureID, characterID, actor)
	}, "character_id", characterID)
}

// Remove drops the character from the roster of an open adventure.
func (s *AdventureService) Remove(ctx context.Context, actor, adventureID, characterID int64) (*models.Adventure, error) {
	return s.mutate(ctx, "remove_character", actor, adventureID, func(ctx context.Context, tx dbx.DBTX, a *models.Adventure) error {
		if a.Finished {
			return common.ErrorConflict
		}
		return s.repos.Adventures(tx).Remove(ctx, adventureID, characterID, actor)
	}, "character_id", characterID)
}

// Finish closes the adventure for good with its closing narrative.
func (s *AdventureService) Finish(ctx context.Context, actor, adventureID int64, closingEvents string) (*models.Adventure, error) {
	if err := validateVar(closingEvents, "max=20000"); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "finish_adventure", actor, adventureID, func(ctx context.Context, tx dbx.DBTX, a *models.Adventure) error {
		if a.Finished {
			return common.ErrorConflict
		}
		return s.repos.Adventures(tx).Finish(ctx, adventureID, closingEvents, actor)
	})
}

// Delete removes an open adventure and its roster.
func (s *AdventureService) Delete(ctx context.Context, actor, adventureID int64) error {
	return s.transition(ctx, "delete_adventure", actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Adventures(tx)
		a, err := repo.GetByID(ctx, adventureID)
		if err != nil {
			return err
		}
		if !policy.MayManageAdventure(a, actor) {
			return common.ErrorAccessDenied
		}
		if a.Finished {
			return common.ErrorConflict
		}
		return repo.Delete(ctx, adventureID, actor)
	}, "adventure_id", adventureID)
}

// mutate loads the adventure inside the transaction, checks that actor runs
// it, runs fn, and returns the adventure as committed.
func (s *AdventureService) mutate(ctx context.Context, op string, actor, adventureID int64,
	fn func(ctx context.Context, tx dbx.DBTX, a *models.Adventure) error, kv ...any) (*models.Adventure, error) {

	var out *models.Adventure
	err := s.transition(ctx, op, actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Adventures(tx)
		a, err := repo.GetByID(ctx, adventureID)
		if err != nil {
			return err
		}
		if !policy.MayManageAdventure(a, actor) {
			return common.ErrorAccessDenied
		}
		if err := fn(ctx, tx, a); err != nil {
			return err
		}
		out, err = repo.GetByID(ctx, adventureID)
		return err
	}, append([]any{"adventure_id", adventureID}, kv...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
