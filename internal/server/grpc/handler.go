package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/server/models"
	"github.com/dmitrijs2005/questkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps lifecycle errors onto gRPC codes. Infrastructure failures are
// logged and reported with a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAccessDenied):
		return status.Error(codes.PermissionDenied, "access denied")
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.Aborted, "conflict")
	case errors.Is(err, common.ErrorInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorStoreUnavailable):
		s.logger.Error(ctx, "store unavailable", "method", method, "error", err)
		return status.Error(codes.Unavailable, "service unavailable")
	default:
		s.logger.Error(ctx, "internal error", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) actor(ctx context.Context) (int64, error) {
	id, ok := ActorFromContext(ctx)
	if !ok {
		return 0, status.Error(codes.Unauthenticated, "missing actor")
	}
	return id, nil
}

// characterCall runs a character operation for the authenticated actor.
func (s *GRPCServer) characterCall(ctx context.Context, method string,
	fn func(actor int64) (*models.Character, error)) (*CharacterReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := fn(actor)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return characterReply(c), nil
}

func (s *GRPCServer) adventureCall(ctx context.Context, method string,
	fn func(actor int64) (*models.Adventure, error)) (*AdventureReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	a, err := fn(actor)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return adventureReply(a), nil
}

func (s *GRPCServer) characterList(ctx context.Context, method string,
	fn func(actor int64) ([]models.CharacterSummary, error)) (*CharacterListReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	list, err := fn(actor)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return &CharacterListReply{Characters: characterSummaries(list)}, nil
}

func (s *GRPCServer) CreateCharacter(ctx context.Context, req *CreateCharacterRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "CreateCharacter", func(actor int64) (*models.Character, error) {
		return s.characters.Create(ctx, actor, services.NewCharacter{
			Name:       req.Name,
			Birth:      req.Birth,
			Profession: req.Profession,
			UniverseID: req.UniverseID,
			Biography:  req.Biography,
		})
	})
}

func (s *GRPCServer) GetCharacter(ctx context.Context, req *CharacterRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "GetCharacter", func(int64) (*models.Character, error) {
		return s.characters.Get(ctx, req.CharacterID)
	})
}

func (s *GRPCServer) RequestValidation(ctx context.Context, req *CharacterPlayerRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "RequestValidation", func(actor int64) (*models.Character, error) {
		return s.characters.RequestValidation(ctx, actor, req.CharacterID, req.PlayerID)
	})
}

func (s *GRPCServer) AcceptValidation(ctx context.Context, req *CharacterRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "AcceptValidation", func(actor int64) (*models.Character, error) {
		return s.characters.AcceptValidation(ctx, actor, req.CharacterID)
	})
}

func (s *GRPCServer) RequestTransfer(ctx context.Context, req *CharacterPlayerRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "RequestTransfer", func(actor int64) (*models.Character, error) {
		return s.characters.RequestTransfer(ctx, actor, req.CharacterID, req.PlayerID)
	})
}

func (s *GRPCServer) AcceptTransfer(ctx context.Context, req *CharacterRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "AcceptTransfer", func(actor int64) (*models.Character, error) {
		return s.characters.AcceptTransfer(ctx, actor, req.CharacterID)
	})
}

func (s *GRPCServer) GiftCharacter(ctx context.Context, req *CharacterPlayerRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "GiftCharacter", func(actor int64) (*models.Character, error) {
		return s.characters.Gift(ctx, actor, req.CharacterID, req.PlayerID)
	})
}

func (s *GRPCServer) UpdateProfession(ctx context.Context, req *UpdateProfessionRequest) (*CharacterReply, error) {
	return s.characterCall(ctx, "UpdateProfession", func(actor int64) (*models.Character, error) {
		return s.characters.UpdateProfession(ctx, actor, req.CharacterID, req.Profession)
	})
}

func (s *GRPCServer) RequestPortraitUpload(ctx context.Context, req *CharacterRequest) (*PortraitUploadReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	key, url, err := s.characters.RequestPortraitUpload(ctx, actor, req.CharacterID)
	if err != nil {
		return nil, s.toStatus(ctx, "RequestPortraitUpload", err)
	}
	return &PortraitUploadReply{Key: key, URL: url}, nil
}

func (s *GRPCServer) PortraitURL(ctx context.Context, req *CharacterRequest) (*PortraitURLReply, error) {
	url, err := s.characters.PortraitURL(ctx, req.CharacterID)
	if err != nil {
		return nil, s.toStatus(ctx, "PortraitURL", err)
	}
	return &PortraitURLReply{URL: url}, nil
}

func (s *GRPCServer) ListMyCharacters(ctx context.Context, _ *Empty) (*CharacterListReply, error) {
	return s.characterList(ctx, "ListMyCharacters", func(actor int64) ([]models.CharacterSummary, error) {
		return s.characters.ListOwned(ctx, actor)
	})
}

func (s *GRPCServer) ListMasteredCharacters(ctx context.Context, _ *Empty) (*CharacterListReply, error) {
	return s.characterList(ctx, "ListMasteredCharacters", func(actor int64) ([]models.CharacterSummary, error) {
		return s.characters.ListMastered(ctx, actor)
	})
}

func (s *GRPCServer) ListPendingValidations(ctx context.Context, _ *Empty) (*CharacterListReply, error) {
	return s.characterList(ctx, "ListPendingValidations", func(actor int64) ([]models.CharacterSummary, error) {
		return s.characters.ListPendingValidation(ctx, actor)
	})
}

func (s *GRPCServer) ListPendingTransfers(ctx context.Context, _ *Empty) (*CharacterListReply, error) {
	return s.characterList(ctx, "ListPendingTransfers", func(actor int64) ([]models.CharacterSummary, error) {
		return s.characters.ListPendingTransfer(ctx, actor)
	})
}

func (s *GRPCServer) CreateAdventure(ctx context.Context, req *CreateAdventureRequest) (*AdventureReply, error) {
	return s.adventureCall(ctx, "CreateAdventure", func(actor int64) (*models.Adventure, error) {
		return s.adventures.Create(ctx, actor, services.NewAdventure{
			Title:      req.Title,
			Synopsis:   req.Synopsis,
			Place:      req.Place,
			Date:       req.Date,
			UniverseID: req.UniverseID,
		})
	})
}

func (s *GRPCServer) GetAdventure(ctx context.Context, req *AdventureRequest) (*AdventureReply, error) {
	return s.adventureCall(ctx, "GetAdventure", func(int64) (*models.Adventure, error) {
		return s.adventures.Get(ctx, req.AdventureID)
	})
}

func (s *GRPCServer) EnrollCharacter(ctx context.Context, req *RosterRequest) (*AdventureReply, error) {
	return s.adventureCall(ctx, "EnrollCharacter", func(actor int64) (*models.Adventure, error) {
		return s.adventures.Enroll(ctx, actor, req.AdventureID, req.CharacterID)
	})
}

func (s *GRPCServer) RemoveCharacter(ctx context.Context, req *RosterRequest) (*AdventureReply, error) {
	return s.adventureCall(ctx, "RemoveCharacter", func(actor int64) (*models.Adventure, error) {
		return s.adventures.Remove(ctx, actor, req.AdventureID, req.CharacterID)
	})
}

func (s *GRPCServer) FinishAdventure(ctx context.Context, req *FinishAdventureRequest) (*AdventureReply, error) {
	return s.adventureCall(ctx, "FinishAdventure", func(actor int64) (*models.Adventure, error) {
		return s.adventures.Finish(ctx, actor, req.AdventureID, req.ClosingEvents)
	})
}

func (s *GRPCServer) DeleteAdventure(ctx context.Context, req *AdventureRequest) (*Empty, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.adventures.Delete(ctx, actor, req.AdventureID); err != nil {
		return nil, s.toStatus(ctx, "DeleteAdventure", err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ListEnrollmentCandidates(ctx context.Context, req *AdventureRequest) (*CharacterListReply, error) {
	return s.characterList(ctx, "ListEnrollmentCandidates", func(actor int64) ([]models.CharacterSummary, error) {
		return s.adventures.ListEnrollmentCandidates(ctx, actor, req.AdventureID)
	})
}

func (s *GRPCServer) ListMyAdventures(ctx context.Context, _ *Empty) (*AdventureListReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.adventures.ListFor(ctx, actor)
	if err != nil {
		return nil, s.toStatus(ctx, "ListMyAdventures", err)
	}
	return &AdventureListReply{Adventures: adventureSummaries(list)}, nil
}

func (s *GRPCServer) RecordEpisode(ctx context.Context, req *RecordEpisodeRequest) (*EpisodeReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.episodes.Record(ctx, actor, services.NewEpisode{
		CharacterID: req.CharacterID,
		AdventureID: req.AdventureID,
		Date:        req.Date,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "RecordEpisode", err)
	}
	return episodeReply(e), nil
}

func (s *GRPCServer) ApproveEpisode(ctx context.Context, req *EpisodeRequest) (*EpisodeReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.episodes.Approve(ctx, actor, req.EpisodeID)
	if err != nil {
		return nil, s.toStatus(ctx, "ApproveEpisode", err)
	}
	return episodeReply(e), nil
}

func (s *GRPCServer) DeleteEpisode(ctx context.Context, req *EpisodeRequest) (*Empty, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.episodes.Delete(ctx, actor, req.EpisodeID); err != nil {
		return nil, s.toStatus(ctx, "DeleteEpisode", err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ListPendingEpisodes(ctx context.Context, _ *Empty) (*EpisodeListReply, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.episodes.ListPending(ctx, actor)
	if err != nil {
		return nil, s.toStatus(ctx, "ListPendingEpisodes", err)
	}
	out := make([]EpisodeReply, 0, len(list))
	for i := range list {
		out = append(out, *episodeReply(&list[i]))
	}
	return &EpisodeListReply{Episodes: out}, nil
}
