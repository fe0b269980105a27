package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
)

const (
	minFixtureParticipants = 2
	maxFixtureParticipants = 20
)

type ScheduleFixtureInput struct {
	Sport     string
	MatchType models.MatchType
	// Participants holds team names for team formats, player registration
	// numbers for player formats.
	Participants []string
	MatchDate    time.Time
}

// FixtureService creates fixtures for schedulable sports, validating the
// participant selection against current roster state.
type FixtureService interface {
	ScheduleFixture(ctx context.Context, input ScheduleFixtureInput, actor models.Actor) (*models.Fixture, error)
	ScheduleLeagueRound(ctx context.Context, sport string, matchDate time.Time, actor models.Actor) ([]*models.Fixture, error)
	GetFixture(ctx context.Context, id int) (*models.Fixture, error)
	ListFixtures(ctx context.Context, sport string) ([]*models.Fixture, error)
}

type fixtureService struct {
	fixtureRepo       repositories.FixtureRepository
	teamRepo          repositories.TeamRepository
	playerRepo        repositories.PlayerRepository
	participationRepo repositories.ParticipationRepository
	sports            catalog.SportCatalog
	now               func() time.Time
}

func NewFixtureService(
	fixtureRepo repositories.FixtureRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	participationRepo repositories.ParticipationRepository,
	sports catalog.SportCatalog,
) FixtureService {
	return &fixtureService{
		fixtureRepo:       fixtureRepo,
		teamRepo:          teamRepo,
		playerRepo:        playerRepo,
		participationRepo: participationRepo,
		sports:            sports,
		now:               time.Now,
	}
}

func (s *fixtureService) ScheduleFixture(ctx context.Context, input ScheduleFixtureInput, actor models.Actor) (*models.Fixture, error) {
	if !actor.IsStaff() {
		return nil, ErrForbiddenOperation
	}

	sport, err := s.lookupSport(input.Sport)
	if err != nil {
		return nil, err
	}
	if !sport.Schedulable() {
		return nil, newValidationError(RuleCompleteness, "%s has no fixtures, entries are enrollment-only", sport.Name)
	}

	switch input.MatchType {
	case models.MatchLeague, models.MatchKnockout, models.MatchFinal:
	default:
		return nil, newValidationError(RuleCompleteness, "unknown match type %q", input.MatchType)
	}

	if dateOnly(input.MatchDate).Before(dateOnly(s.now())) {
		return nil, newValidationError(RuleCompleteness, "match date %s is in the past", input.MatchDate.Format("2006-01-02"))
	}

	if err = checkParticipantCount(sport, len(input.Participants)); err != nil {
		return nil, err
	}
	if err = checkDuplicateSelection(input.Participants); err != nil {
		return nil, err
	}

	var participants []models.FixtureParticipant
	if sport.IsTeamSport() {
		participants, err = s.resolveTeamParticipants(ctx, sport, input.Participants)
	} else {
		participants, err = s.resolvePlayerParticipants(ctx, sport, input.Participants)
	}
	if err != nil {
		return nil, err
	}

	fixture := &models.Fixture{
		Sport:        sport.Name,
		EventYear:    s.sports.EventYear(),
		MatchType:    input.MatchType,
		MatchDate:    dateOnly(input.MatchDate),
		Status:       models.FixtureScheduled,
		Participants: participants,
	}
	if err = s.fixtureRepo.Create(ctx, fixture); err != nil {
		if errors.Is(err, repositories.ErrFixtureNumberConflict) {
			return nil, asConflict(ErrConflict)
		}
		return nil, err
	}
	return fixture, nil
}

// ScheduleLeagueRound creates one league fixture per round-robin pairing of
// all committed teams of a dual team sport.
func (s *fixtureService) ScheduleLeagueRound(ctx context.Context, sportName string, matchDate time.Time, actor models.Actor) ([]*models.Fixture, error) {
	if !actor.IsStaff() {
		return nil, ErrForbiddenOperation
	}
	sport, err := s.lookupSport(sportName)
	if err != nil {
		return nil, err
	}
	if sport.Type != models.SportDualTeam {
		return nil, newValidationError(RuleCompleteness, "league rounds are generated only for dual team sports")
	}

	teams, err := s.teamRepo.ListBySportYear(ctx, sport.Name, s.sports.EventYear())
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(teams))
	ids := make([]int, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
		names[t.ID] = t.Name
	}

	pairings, err := roundRobinPairings(ids)
	if err != nil {
		return nil, newValidationError(RuleCompleteness, "%v", err)
	}

	fixtures := make([]*models.Fixture, 0, len(pairings))
	for _, pairing := range pairings {
		fixture, err := s.ScheduleFixture(ctx, ScheduleFixtureInput{
			Sport:        sport.Name,
			MatchType:    models.MatchLeague,
			Participants: []string{names[pairing.HomeID], names[pairing.AwayID]},
			MatchDate:    matchDate,
		}, actor)
		if err != nil {
			return nil, fmt.Errorf("league round %s vs %s: %w", names[pairing.HomeID], names[pairing.AwayID], err)
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, nil
}

func (s *fixtureService) GetFixture(ctx context.Context, id int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapFixtureReadError(err)
	}
	return fixture, nil
}

func (s *fixtureService) ListFixtures(ctx context.Context, sportName string) ([]*models.Fixture, error) {
	sport, err := s.lookupSport(sportName)
	if err != nil {
		return nil, err
	}
	return s.fixtureRepo.ListBySportYear(ctx, sport.Name, s.sports.EventYear())
}

// resolveTeamParticipants maps team names to fixture slots. Team homogeneity
// is already a registry invariant, so gender is checked by sampling one
// member per team.
func (s *fixtureService) resolveTeamParticipants(ctx context.Context, sport *models.Sport, teamNames []string) ([]models.FixtureParticipant, error) {
	eventYear := s.sports.EventYear()
	participants := make([]models.FixtureParticipant, 0, len(teamNames))

	var sampleGender models.Gender
	var sampleTeam string
	for _, name := range teamNames {
		team, err := s.teamRepo.GetByNameSportYear(ctx, name, sport.Name, eventYear)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, name)
			}
			return nil, err
		}

		members, err := s.playerRepo.ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, newValidationError(RuleCompleteness, "team %s has no members", name)
		}
		if sampleGender == "" {
			sampleGender = members[0].Gender
			sampleTeam = name
		} else if members[0].Gender != sampleGender {
			return nil, newValidationError(RuleHomogeneity, "teams %s and %s differ in gender", sampleTeam, name)
		}

		teamID := team.ID
		participants = append(participants, models.FixtureParticipant{TeamID: &teamID})
	}
	return participants, nil
}

// resolvePlayerParticipants maps registration numbers to fixture slots; each
// player must hold a solo participation for the sport.
func (s *fixtureService) resolvePlayerParticipants(ctx context.Context, sport *models.Sport, regNumbers []string) ([]models.FixtureParticipant, error) {
	eventYear := s.sports.EventYear()
	participants := make([]models.FixtureParticipant, 0, len(regNumbers))

	var sampleGender models.Gender
	var sampleReg string
	for _, reg := range regNumbers {
		player, err := s.playerRepo.GetByRegNumber(ctx, reg)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, reg)
			}
			return nil, err
		}

		if _, err = s.participationRepo.FindByPlayerSportYear(ctx, player.ID, sport.Name, eventYear); err != nil {
			if errors.Is(err, repositories.ErrParticipationNotFound) {
				return nil, newValidationError(RuleCompleteness, "player %s is not enrolled in %s", reg, sport.Name)
			}
			return nil, err
		}

		if sampleGender == "" {
			sampleGender = player.Gender
			sampleReg = reg
		} else if player.Gender != sampleGender {
			return nil, newValidationError(RuleHomogeneity, "players %s and %s differ in gender", sampleReg, reg)
		}

		playerID := player.ID
		participants = append(participants, models.FixtureParticipant{PlayerID: &playerID})
	}
	return participants, nil
}

func (s *fixtureService) lookupSport(name string) (*models.Sport, error) {
	sport, err := s.sports.Get(name)
	if err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return sport, nil
}

func checkParticipantCount(sport *models.Sport, count int) error {
	if sport.IsDual() {
		if count != minFixtureParticipants {
			return newValidationError(RuleCompleteness, "dual format needs exactly 2 participants, got %d", count)
		}
		return nil
	}
	if count < minFixtureParticipants || count > maxFixtureParticipants {
		return newValidationError(RuleCompleteness, "multi format needs 2-%d participants, got %d", maxFixtureParticipants, count)
	}
	return nil
}

func checkDuplicateSelection(selection []string) error {
	seen := make(map[string]bool, len(selection))
	for _, entry := range selection {
		if seen[entry] {
			return newValidationError(RuleDuplicate, "%s selected more than once", entry)
		}
		seen[entry] = true
	}
	return nil
}

func mapFixtureReadError(err error) error {
	if errors.Is(err, repositories.ErrFixtureNotFound) {
		return ErrFixtureNotFound
	}
	return err
}
