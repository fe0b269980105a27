package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/live"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
)

const testCatalogYAML = `
event_year: 2026
sports:
  - name: football
    type: dual_team
    team_size: 11
  - name: basketball
    type: dual_team
    team_size: 5
  - name: relay
    type: multi_team
    team_size: 4
  - name: chess
    type: dual_player
  - name: sprint_100m
    type: multi_player
  - name: essay_writing
    type: cultural
`

func testCatalog(t *testing.T) catalog.SportCatalog {
	t.Helper()
	sports, err := catalog.Parse([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("parse test catalog: %v", err)
	}
	return sports
}

func staffActor() models.Actor {
	return models.Actor{PlayerID: 999, RegNumber: "STAFF-1", Role: models.RoleStaff}
}

func playerActor(p *models.Player) models.Actor {
	return models.Actor{PlayerID: p.ID, RegNumber: p.RegNumber, Role: models.RolePlayer}
}

func testPlayer(id int, reg string, gender models.Gender, admissionYear int) *models.Player {
	return &models.Player{
		ID:            id,
		RegNumber:     reg,
		FullName:      "Player " + reg,
		Gender:        gender,
		AdmissionYear: admissionYear,
		Department:    "CSE",
		Role:          models.RolePlayer,
	}
}

type fakePlayerRepo struct {
	players   map[int]*models.Player
	byTeam    map[int][]models.Player
	createErr error
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{
		players: make(map[int]*models.Player),
		byTeam:  make(map[int][]models.Player),
	}
	for _, p := range players {
		repo.players[p.ID] = p
	}
	return repo
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	if r.createErr != nil {
		return r.createErr
	}
	player.ID = len(r.players) + 1
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	if p, ok := r.players[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) GetByRegNumber(ctx context.Context, regNumber string) (*models.Player, error) {
	for _, p := range r.players {
		if p.RegNumber == regNumber {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListByRegNumbers(ctx context.Context, regNumbers []string) ([]*models.Player, error) {
	found := make([]*models.Player, 0, len(regNumbers))
	for _, reg := range regNumbers {
		for _, p := range r.players {
			if p.RegNumber == reg {
				found = append(found, p)
				break
			}
		}
	}
	return found, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	return r.byTeam[teamID], nil
}

func (r *fakePlayerRepo) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	return nil
}

func (r *fakePlayerRepo) Count(ctx context.Context) (int, error) {
	return len(r.players), nil
}

type fakeParticipationRepo struct {
	participations []models.Participation
	createErr      error
	replaceErr     error
	created        []*models.Participation
}

func (r *fakeParticipationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Participation) error {
	if r.createErr != nil {
		return r.createErr
	}
	p.ID = len(r.participations) + 1
	r.participations = append(r.participations, *p)
	r.created = append(r.created, p)
	return nil
}

func (r *fakeParticipationRepo) FindByPlayerSportYear(ctx context.Context, playerID int, sport string, eventYear int) (*models.Participation, error) {
	for i := range r.participations {
		p := r.participations[i]
		if p.PlayerID == playerID && p.Sport == sport && p.EventYear == eventYear {
			return &p, nil
		}
	}
	return nil, repositories.ErrParticipationNotFound
}

func (r *fakeParticipationRepo) ListByPlayer(ctx context.Context, playerID int, eventYear int) ([]models.Participation, error) {
	var out []models.Participation
	for _, p := range r.participations {
		if p.PlayerID == playerID && p.EventYear == eventYear {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeParticipationRepo) ListByTeam(ctx context.Context, teamID int) ([]models.Participation, error) {
	var out []models.Participation
	for _, p := range r.participations {
		if p.TeamID != nil && *p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeParticipationRepo) ReplacePlayer(ctx context.Context, exec repositories.SQLExecutor, teamID, oldPlayerID, newPlayerID int) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	for i := range r.participations {
		p := &r.participations[i]
		if p.TeamID != nil && *p.TeamID == teamID && p.PlayerID == oldPlayerID {
			p.PlayerID = newPlayerID
			return nil
		}
	}
	return repositories.ErrParticipationNotFound
}

func (r *fakeParticipationRepo) DeleteByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) (int, error) {
	kept := r.participations[:0]
	removed := 0
	for _, p := range r.participations {
		if p.TeamID != nil && *p.TeamID == teamID {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.participations = kept
	return removed, nil
}

func (r *fakeParticipationRepo) Count(ctx context.Context, eventYear int) (int, error) {
	count := 0
	for _, p := range r.participations {
		if p.EventYear == eventYear {
			count++
		}
	}
	return count, nil
}

type fakeTeamRepo struct {
	teams     map[int]*models.Team
	createErr error
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, team := range teams {
		repo.teams[team.ID] = team
	}
	return repo
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if r.createErr != nil {
		return r.createErr
	}
	team.ID = len(r.teams) + 1
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if team, ok := r.teams[id]; ok {
		return team, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) GetByNameSportYear(ctx context.Context, name, sport string, eventYear int) (*models.Team, error) {
	for _, team := range r.teams {
		if team.Name == name && team.Sport == sport && team.EventYear == eventYear {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) GetByCaptain(ctx context.Context, captainID int, sport string, eventYear int) (*models.Team, error) {
	for _, team := range r.teams {
		if team.CaptainID == captainID && team.Sport == sport && team.EventYear == eventYear {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListBySportYear(ctx context.Context, sport string, eventYear int) ([]*models.Team, error) {
	var out []*models.Team
	for id := 1; id <= len(r.teams); id++ {
		team, ok := r.teams[id]
		if ok && team.Sport == sport && team.EventYear == eventYear {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) Count(ctx context.Context, eventYear int) (int, error) {
	count := 0
	for _, team := range r.teams {
		if team.EventYear == eventYear {
			count++
		}
	}
	return count, nil
}

type fakeCaptaincyRepo struct {
	grants   map[string]bool // key: playerID|sport
	grantErr error
}

func newFakeCaptaincyRepo() *fakeCaptaincyRepo {
	return &fakeCaptaincyRepo{grants: make(map[string]bool)}
}

func captaincyKey(playerID int, sport string) string {
	return fmt.Sprintf("%d|%s", playerID, sport)
}

func (r *fakeCaptaincyRepo) Grant(ctx context.Context, playerID int, sport string, eventYear int) error {
	if r.grantErr != nil {
		return r.grantErr
	}
	key := captaincyKey(playerID, sport)
	if r.grants[key] {
		return repositories.ErrCaptaincyConflict
	}
	r.grants[key] = true
	return nil
}

func (r *fakeCaptaincyRepo) Revoke(ctx context.Context, playerID int, sport string, eventYear int) error {
	key := captaincyKey(playerID, sport)
	if !r.grants[key] {
		return repositories.ErrCaptaincyNotFound
	}
	delete(r.grants, key)
	return nil
}

func (r *fakeCaptaincyRepo) Exists(ctx context.Context, playerID int, sport string, eventYear int) (bool, error) {
	return r.grants[captaincyKey(playerID, sport)], nil
}

func (r *fakeCaptaincyRepo) ListSports(ctx context.Context, playerID int, eventYear int) ([]string, error) {
	return nil, nil
}

func (r *fakeCaptaincyRepo) ListPlayerIDs(ctx context.Context, sport string, eventYear int) ([]int, error) {
	return nil, nil
}

type fakeFixtureRepo struct {
	fixtures      map[int]*models.Fixture
	createErr     error
	statusErr     error
	winnerErr     error
	qualifiersErr error
	deleteErr     error
	saved         []models.Qualifier
}

func newFakeFixtureRepo(fixtures ...*models.Fixture) *fakeFixtureRepo {
	repo := &fakeFixtureRepo{fixtures: make(map[int]*models.Fixture)}
	for _, f := range fixtures {
		repo.fixtures[f.ID] = f
	}
	return repo
}

func (r *fakeFixtureRepo) Create(ctx context.Context, fixture *models.Fixture) error {
	if r.createErr != nil {
		return r.createErr
	}
	fixture.ID = len(r.fixtures) + 1
	fixture.MatchNumber = fixture.ID
	for i := range fixture.Participants {
		fixture.Participants[i].ID = fixture.ID*100 + i
		fixture.Participants[i].FixtureID = fixture.ID
	}
	r.fixtures[fixture.ID] = fixture
	return nil
}

func (r *fakeFixtureRepo) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	if f, ok := r.fixtures[id]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, repositories.ErrFixtureNotFound
}

func (r *fakeFixtureRepo) ListBySportYear(ctx context.Context, sport string, eventYear int) ([]*models.Fixture, error) {
	var out []*models.Fixture
	for id := 1; id <= len(r.fixtures); id++ {
		f, ok := r.fixtures[id]
		if ok && f.Sport == sport && f.EventYear == eventYear {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFixtureRepo) UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	f, ok := r.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if f.Status != models.FixtureScheduled || f.WinnerID != nil {
		return repositories.ErrFixtureStateConflict
	}
	f.Status = status
	return nil
}

func (r *fakeFixtureRepo) SetWinner(ctx context.Context, id int, participantID int) error {
	if r.winnerErr != nil {
		return r.winnerErr
	}
	f, ok := r.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if f.Status != models.FixtureCompleted || f.WinnerID != nil {
		return repositories.ErrFixtureStateConflict
	}
	f.WinnerID = &participantID
	return nil
}

func (r *fakeFixtureRepo) SaveQualifiers(ctx context.Context, fixtureID int, qualifiers []models.Qualifier) error {
	if r.qualifiersErr != nil {
		return r.qualifiersErr
	}
	f, ok := r.fixtures[fixtureID]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if len(f.Qualifiers) > 0 {
		return repositories.ErrQualifiersAlreadyRecorded
	}
	f.Qualifiers = qualifiers
	r.saved = qualifiers
	return nil
}

func (r *fakeFixtureRepo) Delete(ctx context.Context, id int) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	f, ok := r.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	if f.ResultRecorded() {
		return repositories.ErrFixtureResultRecorded
	}
	delete(r.fixtures, id)
	return nil
}

func (r *fakeFixtureRepo) Count(ctx context.Context, eventYear int) (int, error) {
	count := 0
	for _, f := range r.fixtures {
		if f.EventYear == eventYear {
			count++
		}
	}
	return count, nil
}

func (r *fakeFixtureRepo) CountByStatus(ctx context.Context, eventYear int, status models.FixtureStatus) (int, error) {
	count := 0
	for _, f := range r.fixtures {
		if f.EventYear == eventYear && f.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeStaging struct {
	staged      map[int][]int
	nominateErr error
	listErr     error
	cleared     []int
}

func newFakeStaging() *fakeStaging {
	return &fakeStaging{staged: make(map[int][]int)}
}

func (s *fakeStaging) Nominate(ctx context.Context, fixtureID, participantID int) (int, error) {
	if s.nominateErr != nil {
		return 0, s.nominateErr
	}
	for _, id := range s.staged[fixtureID] {
		if id == participantID {
			return 0, repositories.ErrQualifierAlreadyStaged
		}
	}
	s.staged[fixtureID] = append(s.staged[fixtureID], participantID)
	return len(s.staged[fixtureID]), nil
}

func (s *fakeStaging) List(ctx context.Context, fixtureID int) ([]int, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.staged[fixtureID], nil
}

func (s *fakeStaging) Clear(ctx context.Context, fixtureID int) error {
	delete(s.staged, fixtureID)
	s.cleared = append(s.cleared, fixtureID)
	return nil
}

type fakeBroadcaster struct {
	messages []live.Message
	rooms    []string
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, message live.Message) {
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, message)
}
