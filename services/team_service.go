package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
	"github.com/Bekzat04/sportsfest-system/storage"
)

type CreateTeamInput struct {
	Sport            string   `json:"sport"`
	TeamName         string   `json:"team_name"`
	PlayerRegNumbers []string `json:"player_reg_numbers"`
}

type ReplaceMemberInput struct {
	TeamName     string `json:"team_name"`
	Sport        string `json:"sport"`
	OldRegNumber string `json:"old_reg_number"`
	NewRegNumber string `json:"new_reg_number"`
}

// TeamService owns the team lifecycle: atomic creation by a captain,
// single-member replacement, and cascading deletion.
type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput, actor models.Actor) (*models.Team, error)
	ReplaceMember(ctx context.Context, input ReplaceMemberInput, actor models.Actor) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamName, sport string, actor models.Actor) (int, error)
	GetTeam(ctx context.Context, teamName, sport string) (*models.Team, error)
	UploadLogo(ctx context.Context, teamID int, contentType string, body io.Reader, actor models.Actor) (*models.Team, error)
}

type teamService struct {
	db                *sql.DB
	teamRepo          repositories.TeamRepository
	playerRepo        repositories.PlayerRepository
	participationRepo repositories.ParticipationRepository
	captaincyRepo     repositories.CaptaincyRepository
	sports            catalog.SportCatalog
	validator         EligibilityValidator
	uploader          storage.FileUploader
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	participationRepo repositories.ParticipationRepository,
	captaincyRepo repositories.CaptaincyRepository,
	sports catalog.SportCatalog,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		db:                db,
		teamRepo:          teamRepo,
		playerRepo:        playerRepo,
		participationRepo: participationRepo,
		captaincyRepo:     captaincyRepo,
		sports:            sports,
		uploader:          uploader,
	}
}

// CreateTeam validates against a freshly read roster snapshot, never a
// client-supplied one, then commits the team and every member's
// participation in a single transaction. Unique-key violations at commit
// time surface as conflicts so the caller refetches instead of resubmitting
// the same stale selection.
func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput, actor models.Actor) (*models.Team, error) {
	sport, err := s.lookupSport(input.Sport)
	if err != nil {
		return nil, err
	}
	if !sport.IsTeamSport() {
		return nil, newValidationError(RuleCompleteness, "%s is not a team sport", sport.Name)
	}
	if input.TeamName == "" {
		return nil, newValidationError(RuleCompleteness, "team name is required")
	}

	eventYear := s.sports.EventYear()
	isCaptain, err := s.captaincyRepo.Exists(ctx, actor.PlayerID, sport.Name, eventYear)
	if err != nil {
		return nil, err
	}
	if !isCaptain {
		return nil, ErrMustBeCaptain
	}

	players, err := s.resolvePlayers(ctx, input.PlayerRegNumbers)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.buildSnapshot(ctx, players, sport.Name, eventYear, actor.PlayerID)
	if err != nil {
		return nil, err
	}

	candidate := Candidate{
		CaptainID: actor.PlayerID,
		Players:   players,
		Slots:     sport.TeamSize,
	}
	if err = s.validator.Validate(candidate, sport, snapshot); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:      input.TeamName,
		Sport:     sport.Name,
		EventYear: eventYear,
		CaptainID: actor.PlayerID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create team tx: %w", ErrStoreUnavailable)
	}
	defer tx.Rollback()

	if err = s.teamRepo.Create(ctx, tx, team); err != nil {
		return nil, mapTeamWriteError(err)
	}
	for _, p := range players {
		participation := &models.Participation{
			PlayerID:  p.ID,
			Sport:     sport.Name,
			EventYear: eventYear,
			TeamID:    &team.ID,
		}
		if err = s.participationRepo.Create(ctx, tx, participation); err != nil {
			return nil, mapTeamWriteError(err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create team tx: %w", ErrStoreUnavailable)
	}

	for _, p := range players {
		team.Members = append(team.Members, *p)
	}
	return team, nil
}

// ReplaceMember swaps exactly one non-captain member. The incoming player is
// validated against the remaining roster; their enrollment uniqueness is
// re-checked by the store at commit time.
func (s *teamService) ReplaceMember(ctx context.Context, input ReplaceMemberInput, actor models.Actor) (*models.Team, error) {
	sport, err := s.lookupSport(input.Sport)
	if err != nil {
		return nil, err
	}
	eventYear := s.sports.EventYear()

	team, err := s.teamRepo.GetByNameSportYear(ctx, input.TeamName, sport.Name, eventYear)
	if err != nil {
		return nil, mapTeamReadError(err)
	}
	if !actor.IsStaff() && actor.PlayerID != team.CaptainID {
		return nil, ErrForbiddenOperation
	}

	oldPlayer, err := s.playerRepo.GetByRegNumber(ctx, input.OldRegNumber)
	if err != nil {
		return nil, mapPlayerReadError(err)
	}
	if oldPlayer.ID == team.CaptainID {
		return nil, ErrCannotReplaceCaptain
	}

	newPlayer, err := s.playerRepo.GetByRegNumber(ctx, input.NewRegNumber)
	if err != nil {
		return nil, mapPlayerReadError(err)
	}

	members, err := s.playerRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	remaining := make([]*models.Player, 0, len(members))
	oldIsMember := false
	for i := range members {
		if members[i].ID == oldPlayer.ID {
			oldIsMember = true
			continue
		}
		remaining = append(remaining, &members[i])
	}
	if !oldIsMember {
		return nil, ErrParticipationNotFound
	}

	proposed := append(remaining, newPlayer)

	// Snapshot includes only the incoming player's participation: the
	// remaining members legitimately hold one for this team already.
	snapshot, err := s.buildSnapshot(ctx, proposed, sport.Name, eventYear, 0)
	if err != nil {
		return nil, err
	}
	for id := range snapshot.Participations {
		if id != newPlayer.ID {
			delete(snapshot.Participations, id)
		}
	}

	candidate := Candidate{
		Players: proposed,
		Slots:   sport.TeamSize,
	}
	if err = s.validator.Validate(candidate, sport, snapshot); err != nil {
		return nil, err
	}

	if err = s.participationRepo.ReplacePlayer(ctx, nil, team.ID, oldPlayer.ID, newPlayer.ID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipationNotFound):
			return nil, ErrParticipationNotFound
		case errors.Is(err, repositories.ErrParticipationConflict):
			return nil, asConflict(ErrEnrollmentConflict)
		default:
			return nil, err
		}
	}

	return s.GetTeam(ctx, team.Name, team.Sport)
}

// DeleteTeam removes the team and strips every member's participation,
// returning the number of affected players. Deleting a missing team reports
// ErrTeamNotFound, not a crash.
func (s *teamService) DeleteTeam(ctx context.Context, teamName, sport string, actor models.Actor) (int, error) {
	if !actor.IsStaff() {
		return 0, ErrForbiddenOperation
	}
	sportDef, err := s.lookupSport(sport)
	if err != nil {
		return 0, err
	}

	team, err := s.teamRepo.GetByNameSportYear(ctx, teamName, sportDef.Name, s.sports.EventYear())
	if err != nil {
		return 0, mapTeamReadError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete team tx: %w", ErrStoreUnavailable)
	}
	defer tx.Rollback()

	affected, err := s.participationRepo.DeleteByTeam(ctx, tx, team.ID)
	if err != nil {
		return 0, err
	}
	if err = s.teamRepo.Delete(ctx, tx, team.ID); err != nil {
		return 0, mapTeamReadError(err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete team tx: %w", ErrStoreUnavailable)
	}
	return affected, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamName, sport string) (*models.Team, error) {
	sportDef, err := s.lookupSport(sport)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByNameSportYear(ctx, teamName, sportDef.Name, s.sports.EventYear())
	if err != nil {
		return nil, mapTeamReadError(err)
	}
	if team.Members, err = s.playerRepo.ListByTeam(ctx, team.ID); err != nil {
		return nil, err
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, body io.Reader, actor models.Actor) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamReadError(err)
	}
	if !actor.IsStaff() && actor.PlayerID != team.CaptainID {
		return nil, ErrForbiddenOperation
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, newValidationError(RuleCompleteness, "%v", err)
	}

	key := fmt.Sprintf("teams/%d/logo%s", team.ID, ext)
	if _, err = s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("upload team logo: %w", err)
	}
	if err = s.teamRepo.UpdateLogoKey(ctx, team.ID, &key); err != nil {
		return nil, mapTeamReadError(err)
	}
	team.LogoKey = &key
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) lookupSport(name string) (*models.Sport, error) {
	sport, err := s.sports.Get(name)
	if err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return sport, nil
}

// resolvePlayers maps submitted registration numbers to players, preserving
// submission order. Unknown numbers fail fast with the offending value.
func (s *teamService) resolvePlayers(ctx context.Context, regNumbers []string) ([]*models.Player, error) {
	found, err := s.playerRepo.ListByRegNumbers(ctx, regNumbers)
	if err != nil {
		return nil, err
	}
	byReg := make(map[string]*models.Player, len(found))
	for _, p := range found {
		byReg[p.RegNumber] = p
	}

	players := make([]*models.Player, 0, len(regNumbers))
	for _, reg := range regNumbers {
		p, ok := byReg[reg]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, reg)
		}
		players = append(players, p)
	}
	return players, nil
}

// buildSnapshot reads current roster state for the candidate players. It is
// re-read on every call so no stale client state feeds a write decision.
func (s *teamService) buildSnapshot(ctx context.Context, players []*models.Player, sport string, eventYear, captainID int) (*RosterSnapshot, error) {
	snapshot := &RosterSnapshot{
		EventYear:      eventYear,
		Participations: make(map[int]*models.Participation, len(players)),
		SportCaptains:  make(map[int]bool, len(players)),
		CaptainOfTeam:  make(map[int]bool, 1),
	}

	for _, p := range players {
		participation, err := s.participationRepo.FindByPlayerSportYear(ctx, p.ID, sport, eventYear)
		if err != nil && !errors.Is(err, repositories.ErrParticipationNotFound) {
			return nil, err
		}
		if participation != nil {
			snapshot.Participations[p.ID] = participation
		}

		isCaptain, err := s.captaincyRepo.Exists(ctx, p.ID, sport, eventYear)
		if err != nil {
			return nil, err
		}
		snapshot.SportCaptains[p.ID] = isCaptain
	}

	if captainID != 0 {
		_, err := s.teamRepo.GetByCaptain(ctx, captainID, sport, eventYear)
		switch {
		case err == nil:
			snapshot.CaptainOfTeam[captainID] = true
		case errors.Is(err, repositories.ErrTeamNotFound):
			// no committed team yet
		default:
			return nil, err
		}
	}
	return snapshot, nil
}

func mapTeamWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return asConflict(ErrTeamNameConflict)
	case errors.Is(err, repositories.ErrParticipationConflict):
		return asConflict(ErrEnrollmentConflict)
	default:
		return err
	}
}

func mapTeamReadError(err error) error {
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return ErrTeamNotFound
	}
	return err
}

func mapPlayerReadError(err error) error {
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}
