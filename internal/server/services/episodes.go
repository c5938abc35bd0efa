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

type NewEpisode struct {
	CharacterID int64  `validate:"gt=0"`
	AdventureID *int64 `validate:"omitempty,gt=0"`
	Date        string `validate:"required,max=100"`
}

// EpisodeService records biography episodes and routes them to the
// character's game-master for approval.
type EpisodeService struct {
	engine
}

func NewEpisodeService(store Store, repos repomanager.RepositoryManager, log logging.Logger, rec metrics.Recorder) *EpisodeService {
	return &EpisodeService{engine: newEngine(store, repos, log, rec)}
}

// Record adds an unvalidated episode to the biography of a character owned by
// actor. A referenced adventure must count the character in its roster.
func (s *EpisodeService) Record(ctx context.Context, actor int64, in NewEpisode) (*models.Episode, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out *models.Episode
	err := s.transition(ctx, "record_episode", actor, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.repos.Characters(tx).GetByID(ctx, in.CharacterID)
		if err != nil {
			return err
		}
		if !policy.MayRecordEpisode(c, actor) {
			return common.ErrorAccessDenied
		}
		if in.AdventureID != nil {
			if _, err := s.repos.Adventures(tx).GetByID(ctx, *in.AdventureID); err != nil {
				return err
			}
			member, err := s.repos.Adventures(tx).IsMember(ctx, *in.AdventureID, in.CharacterID)
			if err != nil {
				return err
			}
			if !member {
				return common.ErrorConflict
			}
		}

		gm := c.GameMaster.ID
		out, err = s.repos.Episodes(tx).Create(ctx, &models.Episode{
			BiographyID:  c.BiographyID,
			AdventureID:  in.AdventureID,
			Date:         in.Date,
			GameMasterID: &gm,
		})
		return err
	}, "character_id", in.CharacterID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve validates an episode; only its current approver may.
func (s *EpisodeService) Approve(ctx context.Context, actor, episodeID int64) (*models.Episode, error) {
	var out *models.Episode
	err := s.transition(ctx, "approve_episode", actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Episodes(tx)
		e, err := repo.GetByID(ctx, episodeID)
		if err != nil {
			return err
		}
		if !policy.MayApproveEpisode(e, actor) {
			return common.ErrorAccessDenied
		}
		if err := repo.Approve(ctx, episodeID, actor); err != nil {
			return err
		}
		out, err = repo.GetByID(ctx, episodeID)
		return err
	}, "episode_id", episodeID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete withdraws an unvalidated episode of one of actor's characters.
func (s *EpisodeService) Delete(ctx context.Context, actor, episodeID int64) error {
	return s.transition(ctx, "delete_episode", actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Episodes(tx)
		e, err := repo.GetByID(ctx, episodeID)
		if err != nil {
			return err
		}
		if e.Validated {
			return common.ErrorAccessDenied
		}
		return repo.Delete(ctx, episodeID, actor)
	}, "episode_id", episodeID)
}

// ListPending returns the episodes waiting for actor's approval.
func (s *EpisodeService) ListPending(ctx context.Context, actor int64) ([]models.Episode, error) {
	var out []models.Episode
	err := s.read(ctx, "list_pending_episodes", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Episodes(db).ListPendingFor(ctx, actor)
		return err
	})
	return out, err
}

// ListForCharacter returns the validated or pending episodes of the
// character's biography.
func (s *EpisodeService) ListForCharacter(ctx context.Context, characterID int64, validated bool) ([]models.Episode, error) {
	var out []models.Episode
	err := s.read(ctx, "list_character_episodes", func(ctx context.Context, db dbx.DBTX) error {
		c, err := s.repos.Characters(db).GetByID(ctx, characterID)
		if err != nil {
			return err
		}
		out, err = s.repos.Episodes(db).ListForBiography(ctx, c.BiographyID, validated)
		return err
	})
	return out, err
}
