package services

import (
	"context"
	"errors"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
)

type EnrollInput struct {
	RegNumber string `json:"reg_number"`
	Sport     string `json:"sport"`
}

// EnrollmentService writes solo participations for sports that are not
// entered through teams.
type EnrollmentService interface {
	EnrollIndividual(ctx context.Context, input EnrollInput, actor models.Actor) (*models.Participation, error)
	ListByPlayer(ctx context.Context, regNumber string) ([]models.Participation, error)
}

type enrollmentService struct {
	playerRepo        repositories.PlayerRepository
	participationRepo repositories.ParticipationRepository
	captaincyRepo     repositories.CaptaincyRepository
	sports            catalog.SportCatalog
	validator         EligibilityValidator
}

func NewEnrollmentService(
	playerRepo repositories.PlayerRepository,
	participationRepo repositories.ParticipationRepository,
	captaincyRepo repositories.CaptaincyRepository,
	sports catalog.SportCatalog,
) EnrollmentService {
	return &enrollmentService{
		playerRepo:        playerRepo,
		participationRepo: participationRepo,
		captaincyRepo:     captaincyRepo,
		sports:            sports,
	}
}

func (s *enrollmentService) EnrollIndividual(ctx context.Context, input EnrollInput, actor models.Actor) (*models.Participation, error) {
	sport, err := s.sports.Get(input.Sport)
	if err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	if sport.IsTeamSport() {
		return nil, newValidationError(RuleCompleteness, "%s is entered through teams, not solo enrollment", sport.Name)
	}

	// Players enroll themselves; staff may enroll anyone.
	if !actor.IsStaff() && actor.RegNumber != input.RegNumber {
		return nil, ErrForbiddenOperation
	}

	player, err := s.playerRepo.GetByRegNumber(ctx, input.RegNumber)
	if err != nil {
		return nil, mapPlayerReadError(err)
	}

	eventYear := s.sports.EventYear()
	snapshot := &RosterSnapshot{
		EventYear:      eventYear,
		Participations: make(map[int]*models.Participation, 1),
	}
	existing, err := s.participationRepo.FindByPlayerSportYear(ctx, player.ID, sport.Name, eventYear)
	if err != nil && !errors.Is(err, repositories.ErrParticipationNotFound) {
		return nil, err
	}
	if existing != nil {
		snapshot.Participations[player.ID] = existing
	}

	candidate := Candidate{Players: []*models.Player{player}, Slots: 1}
	if err = s.validator.Validate(candidate, sport, snapshot); err != nil {
		return nil, err
	}

	participation := &models.Participation{
		PlayerID:  player.ID,
		Sport:     sport.Name,
		EventYear: eventYear,
	}
	if err = s.participationRepo.Create(ctx, nil, participation); err != nil {
		if errors.Is(err, repositories.ErrParticipationConflict) {
			return nil, asConflict(ErrEnrollmentConflict)
		}
		return nil, err
	}
	participation.Player = player
	return participation, nil
}

func (s *enrollmentService) ListByPlayer(ctx context.Context, regNumber string) ([]models.Participation, error) {
	player, err := s.playerRepo.GetByRegNumber(ctx, regNumber)
	if err != nil {
		return nil, mapPlayerReadError(err)
	}
	return s.participationRepo.ListByPlayer(ctx, player.ID, s.sports.EventYear())
}
