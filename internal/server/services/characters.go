package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/dmitrijs2005/questkeeper/internal/server/policy"
	"github.com/dmitrijs2005/questkeeper/internal/server/portraits"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/characters"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
)

var errNoPortraitStorage = errors.New("portrait storage is not configured")

// NewCharacter is the creation input of a character.
type NewCharacter struct {
	Name       string `validate:"required,max=100"`
	Birth      string `validate:"max=200"`
	Profession string `validate:"max=100"`
	UniverseID int64  `validate:"gt=0"`
	Biography  string `validate:"max=20000"`
}

// CharacterService runs the character lifecycle: creation, validation,
// game-master transfer, gift, and owner edits.
type CharacterService struct {
	engine
	presigner portraits.Presigner
}

func NewCharacterService(store Store, repos repomanager.RepositoryManager, presigner portraits.Presigner,
	log logging.Logger, rec metrics.Recorder) *CharacterService {
	return &CharacterService{
		engine:    newEngine(store, repos, log, rec),
		presigner: presigner,
	}
}

// Create inserts an unvalidated character owned by actor. An unknown
// universe surfaces as a persistence error from the foreign key.
func (s *CharacterService) Create(ctx context.Context, actor int64, in NewCharacter) (*models.Character, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out *models.Character
	err := s.transition(ctx, "create_character", actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Characters(tx)
		c, err := repo.Create(ctx, &models.Character{
			Name:       in.Name,
			Birth:      in.Birth,
			Profession: in.Profession,
			Universe:   models.Universe{ID: in.UniverseID},
			Owner:      &models.PlayerRef{ID: actor},
		}, in.Biography)
		if err != nil {
			return err
		}
		out, err = repo.GetByID(ctx, c.ID)
		return err
	}, "universe_id", in.UniverseID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CharacterService) Get(ctx context.Context, id int64) (*models.Character, error) {
	var out *models.Character
	err := s.read(ctx, "get_character", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Characters(db).GetByID(ctx, id)
		return err
	})
	return out, err
}

func (s *CharacterService) ListAll(ctx context.Context) ([]models.CharacterSummary, error) {
	var out []models.CharacterSummary
	err := s.read(ctx, "list_characters", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Characters(db).ListAll(ctx)
		return err
	})
	return out, err
}

func (s *CharacterService) ListOwned(ctx context.Context, actor int64) ([]models.CharacterSummary, error) {
	var out []models.CharacterSummary
	err := s.read(ctx, "list_owned_characters", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Characters(db).ListOwnedBy(ctx, actor)
		return err
	})
	return out, err
}

func (s *CharacterService) ListMastered(ctx context.Context, actor int64) ([]models.CharacterSummary, error) {
	var out []models.CharacterSummary
	err := s.read(ctx, "list_mastered_characters", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Characters(db).ListMasteredBy(ctx, actor)
		return err
	})
	return out, err
}

func (s *CharacterService) ListPendingValidation(ctx context.Context, actor int64) ([]models.CharacterSummary, error) {
	var out []models.CharacterSummary
	err := s.read(ctx, "list_pending_validations", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Characters(db).ListPendingValidationFor(ctx, actor)
		return err
	})
	return out, err
}

func (s *CharacterService) ListPendingTransfer(ctx context.Context, actor int64) ([]models.CharacterSummary, error) {
	var out []models.CharacterSummary
	err := s.read(ctx, "list_pending_transfers", func(ctx context.Context, db dbx.DBTX) (err error) {
		out, err = s.repos.Characters(db).ListPendingTransferFor(ctx, actor)
		return err
	})
	return out, err
}

// RequestValidation designates validator as the game-master asked to validate
// the character. Asking again while unvalidated re-designates.
func (s *CharacterService) RequestValidation(ctx context.Context, actor, characterID, validator int64) (*models.Character, error) {
	return s.mutate(ctx, "request_validation", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayRequestValidation(c, actor, validator) {
			return common.ErrorAccessDenied
		}
		if _, err := s.repos.Players(tx).GetByID(ctx, validator); err != nil {
			return err
		}
		return s.repos.Characters(tx).RequestValidation(ctx, characterID, validator, actor)
	}, "validator", validator)
}

// AcceptValidation makes actor the game-master of the character. Only the
// designated validator may accept, once.
func (s *CharacterService) AcceptValidation(ctx context.Context, actor, characterID int64) (*models.Character, error) {
	return s.mutate(ctx, "accept_validation", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayAcceptValidation(c, actor) {
			return common.ErrorAccessDenied
		}
		return s.repos.Characters(tx).AcceptValidation(ctx, characterID, actor)
	})
}

// RequestTransfer asks target to take over as game-master. A character
// enrolled in an open adventure cannot change game-master.
func (s *CharacterService) RequestTransfer(ctx context.Context, actor, characterID, target int64) (*models.Character, error) {
	return s.mutate(ctx, "request_transfer", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayRequestTransfer(c, actor, target) {
			return common.ErrorAccessDenied
		}
		repo := s.repos.Characters(tx)
		if err := ensureFree(ctx, repo, characterID); err != nil {
			return err
		}
		if _, err := s.repos.Players(tx).GetByID(ctx, target); err != nil {
			return err
		}
		return repo.RequestTransfer(ctx, characterID, target, actor)
	}, "target", target)
}

// AcceptTransfer makes actor the game-master and hands over the approval of
// the character's pending episodes in the same transaction.
func (s *CharacterService) AcceptTransfer(ctx context.Context, actor, characterID int64) (*models.Character, error) {
	return s.mutate(ctx, "accept_transfer", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayAcceptTransfer(c, actor) {
			return common.ErrorAccessDenied
		}
		repo := s.repos.Characters(tx)
		if err := ensureFree(ctx, repo, characterID); err != nil {
			return err
		}
		return repo.AcceptTransfer(ctx, characterID, actor)
	})
}

// Gift hands ownership to destination and drops pending requests.
func (s *CharacterService) Gift(ctx context.Context, actor, characterID, destination int64) (*models.Character, error) {
	return s.mutate(ctx, "gift_character", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayGift(c, actor, destination) {
			return common.ErrorAccessDenied
		}
		if _, err := s.repos.Players(tx).GetByID(ctx, destination); err != nil {
			return err
		}
		return s.repos.Characters(tx).Gift(ctx, characterID, destination, actor)
	}, "destination", destination)
}

func (s *CharacterService) UpdateProfession(ctx context.Context, actor, characterID int64, profession string) (*models.Character, error) {
	if err := validateVar(profession, "max=100"); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "update_profession", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayEditCharacter(c, actor) {
			return common.ErrorAccessDenied
		}
		return s.repos.Characters(tx).UpdateProfession(ctx, characterID, profession, actor)
	})
}

// RequestPortraitUpload stores a fresh portrait key on the character and
// returns it with a presigned PUT URL. Presigning happens before commit so a
// signing failure leaves the old portrait in place.
func (s *CharacterService) RequestPortraitUpload(ctx context.Context, actor, characterID int64) (key, url string, err error) {
	if s.presigner == nil {
		return "", "", errNoPortraitStorage
	}
	_, err = s.mutate(ctx, "request_portrait_upload", actor, characterID, func(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
		if !policy.MayEditCharacter(c, actor) {
			return common.ErrorAccessDenied
		}
		key = portraits.NewStorageKey(s.now())
		if err := s.repos.Characters(tx).SetPortrait(ctx, characterID, key, actor); err != nil {
			return err
		}
		signed, err := s.presigner.PresignPut(ctx, key)
		if err != nil {
			return err
		}
		url = signed
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// PortraitURL returns a presigned GET URL of the character's portrait.
func (s *CharacterService) PortraitURL(ctx context.Context, characterID int64) (string, error) {
	c, err := s.Get(ctx, characterID)
	if err != nil {
		return "", err
	}
	if c.Portrait == "" {
		return "", common.ErrorNotFound
	}
	if s.presigner == nil {
		return "", errNoPortraitStorage
	}
	return s.presigner.PresignGet(ctx, c.Portrait)
}

// mutate loads the character inside the transaction, runs fn against that
// fresh state, and returns the character as committed.
func (s *CharacterService) mutate(ctx context.Context, op string, actor, characterID int64,
	fn func(ctx context.Context, tx dbx.DBTX, c *models.Character) error, kv ...any) (*models.Character, error) {

	var out *models.Character
	err := s.transition(ctx, op, actor, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Characters(tx)
		c, err := repo.GetByID(ctx, characterID)
		if err != nil {
			return err
		}
		if err := fn(ctx, tx, c); err != nil {
			return err
		}
		out, err = repo.GetByID(ctx, characterID)
		return err
	}, append([]any{"character_id", characterID}, kv...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ensureFree fails with Conflict while the character sits in an open
// adventure.
func ensureFree(ctx context.Context, repo characters.Repository, characterID int64) error {
	busy, err := repo.IsEnrolledInOpenAdventure(ctx, characterID)
	if err != nil {
		return err
	}
	if busy {
		return common.ErrorConflict
	}
	return nil
}
