package services

import (
	"context"
	"errors"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
)

// CaptaincyService manages the staff-maintained roster of designated
// captains. Captaincy is a prerequisite for team registration, not a
// consequence of it.
type CaptaincyService interface {
	Grant(ctx context.Context, playerID int, sport string, actor models.Actor) error
	Revoke(ctx context.Context, playerID int, sport string, actor models.Actor) error
	ListSports(ctx context.Context, playerID int) ([]string, error)
}

type captaincyService struct {
	captaincyRepo repositories.CaptaincyRepository
	playerRepo    repositories.PlayerRepository
	sports        catalog.SportCatalog
}

func NewCaptaincyService(
	captaincyRepo repositories.CaptaincyRepository,
	playerRepo repositories.PlayerRepository,
	sports catalog.SportCatalog,
) CaptaincyService {
	return &captaincyService{
		captaincyRepo: captaincyRepo,
		playerRepo:    playerRepo,
		sports:        sports,
	}
}

func (s *captaincyService) Grant(ctx context.Context, playerID int, sport string, actor models.Actor) error {
	if !actor.IsStaff() {
		return ErrForbiddenOperation
	}
	def, err := s.sports.Get(sport)
	if err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return err
	}
	if !def.IsTeamSport() {
		return newValidationError(RuleCompleteness, "%s is not a team sport, captaincy does not apply", sport)
	}
	if _, err = s.playerRepo.GetByID(ctx, playerID); err != nil {
		return mapPlayerReadError(err)
	}

	if err = s.captaincyRepo.Grant(ctx, playerID, sport, s.sports.EventYear()); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCaptaincyConflict):
			return asConflict(ErrCaptaincyConflict)
		case errors.Is(err, repositories.ErrCaptaincyPlayerInvalid):
			return ErrPlayerNotFound
		default:
			return err
		}
	}
	return nil
}

func (s *captaincyService) Revoke(ctx context.Context, playerID int, sport string, actor models.Actor) error {
	if !actor.IsStaff() {
		return ErrForbiddenOperation
	}
	if err := s.captaincyRepo.Revoke(ctx, playerID, sport, s.sports.EventYear()); err != nil {
		if errors.Is(err, repositories.ErrCaptaincyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *captaincyService) ListSports(ctx context.Context, playerID int) ([]string, error) {
	return s.captaincyRepo.ListSports(ctx, playerID, s.sports.EventYear())
}
