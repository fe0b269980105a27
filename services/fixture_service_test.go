package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Bekzat04/sportsfest-system/models"
)

func newTestFixtureService(t *testing.T, fixtureRepo *fakeFixtureRepo, teamRepo *fakeTeamRepo, playerRepo *fakePlayerRepo, participationRepo *fakeParticipationRepo) *fixtureService {
	t.Helper()
	return &fixtureService{
		fixtureRepo:       fixtureRepo,
		teamRepo:          teamRepo,
		playerRepo:        playerRepo,
		participationRepo: participationRepo,
		sports:            testCatalog(t),
		now:               func() time.Time { return testToday },
	}
}

func sprinter(repo *fakeParticipationRepo, p *models.Player) {
	repo.participations = append(repo.participations, models.Participation{
		ID:        len(repo.participations) + 1,
		PlayerID:  p.ID,
		Sport:     "sprint_100m",
		EventYear: 2026,
	})
}

func TestScheduleFixtureRejectsNonStaff(t *testing.T) {
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), newFakePlayerRepo(), &fakeParticipationRepo{})

	player := testPlayer(1, "REG-001", models.GenderMale, 2024)
	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{Sport: "football"}, playerActor(player))
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}
}

func TestScheduleFixtureRejectsPastDate(t *testing.T) {
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), newFakePlayerRepo(), &fakeParticipationRepo{})

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "football",
		MatchType:    models.MatchLeague,
		Participants: []string{"Alpha", "Beta"},
		MatchDate:    testToday.AddDate(0, 0, -1),
	}, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure for past date, got %v", err)
	}
}

func TestScheduleFixtureRejectsEnrollmentOnlySport(t *testing.T) {
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), newFakePlayerRepo(), &fakeParticipationRepo{})

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "essay_writing",
		MatchType:    models.MatchFinal,
		Participants: []string{"REG-001", "REG-002"},
		MatchDate:    testToday,
	}, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestScheduleFixtureDualNeedsExactlyTwo(t *testing.T) {
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), newFakePlayerRepo(), &fakeParticipationRepo{})

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "football",
		MatchType:    models.MatchLeague,
		Participants: []string{"Alpha", "Beta", "Gamma"},
		MatchDate:    testToday,
	}, staffActor())
	if rule := validationRule(t, err); rule != RuleCompleteness {
		t.Fatalf("expected rule %q, got %q", RuleCompleteness, rule)
	}
}

func TestScheduleFixtureRejectsDuplicateSelection(t *testing.T) {
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), newFakePlayerRepo(), &fakeParticipationRepo{})

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "football",
		MatchType:    models.MatchLeague,
		Participants: []string{"Alpha", "Alpha"},
		MatchDate:    testToday,
	}, staffActor())
	if rule := validationRule(t, err); rule != RuleDuplicate {
		t.Fatalf("expected rule %q, got %q", RuleDuplicate, rule)
	}
}

func TestScheduleTeamFixture(t *testing.T) {
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 1, Name: "Alpha", Sport: "football", EventYear: 2026, CaptainID: 1},
		&models.Team{ID: 2, Name: "Beta", Sport: "football", EventYear: 2026, CaptainID: 2},
	)
	playerRepo := newFakePlayerRepo()
	playerRepo.byTeam[1] = []models.Player{*testPlayer(1, "REG-001", models.GenderMale, 2024)}
	playerRepo.byTeam[2] = []models.Player{*testPlayer(2, "REG-002", models.GenderMale, 2024)}
	fixtureRepo := newFakeFixtureRepo()
	svc := newTestFixtureService(t, fixtureRepo, teamRepo, playerRepo, &fakeParticipationRepo{})

	fixture, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "football",
		MatchType:    models.MatchLeague,
		Participants: []string{"Alpha", "Beta"},
		MatchDate:    testToday.AddDate(0, 0, 7),
	}, staffActor())
	if err != nil {
		t.Fatalf("schedule fixture: %v", err)
	}

	if fixture.Status != models.FixtureScheduled {
		t.Fatalf("expected scheduled status, got %q", fixture.Status)
	}
	if fixture.EventYear != 2026 {
		t.Fatalf("expected event year 2026, got %d", fixture.EventYear)
	}
	if len(fixture.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(fixture.Participants))
	}
	if fixture.Participants[0].TeamID == nil || *fixture.Participants[0].TeamID != 1 {
		t.Fatalf("expected first slot to hold team 1, got %+v", fixture.Participants[0])
	}
	if fixture.MatchNumber == 0 {
		t.Fatal("expected an assigned match number")
	}
}

func TestScheduleTeamFixtureRejectsGenderMismatch(t *testing.T) {
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 1, Name: "Alpha", Sport: "football", EventYear: 2026, CaptainID: 1},
		&models.Team{ID: 2, Name: "Beta", Sport: "football", EventYear: 2026, CaptainID: 2},
	)
	playerRepo := newFakePlayerRepo()
	playerRepo.byTeam[1] = []models.Player{*testPlayer(1, "REG-001", models.GenderMale, 2024)}
	playerRepo.byTeam[2] = []models.Player{*testPlayer(2, "REG-002", models.GenderFemale, 2024)}
	svc := newTestFixtureService(t, newFakeFixtureRepo(), teamRepo, playerRepo, &fakeParticipationRepo{})

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "football",
		MatchType:    models.MatchLeague,
		Participants: []string{"Alpha", "Beta"},
		MatchDate:    testToday,
	}, staffActor())
	if rule := validationRule(t, err); rule != RuleHomogeneity {
		t.Fatalf("expected rule %q, got %q", RuleHomogeneity, rule)
	}
}

func TestScheduleTeamFixtureUnknownTeam(t *testing.T) {
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Alpha", Sport: "football", EventYear: 2026})
	playerRepo := newFakePlayerRepo()
	playerRepo.byTeam[1] = []models.Player{*testPlayer(1, "REG-001", models.GenderMale, 2024)}
	svc := newTestFixtureService(t, newFakeFixtureRepo(), teamRepo, playerRepo, &fakeParticipationRepo{})

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "football",
		MatchType:    models.MatchLeague,
		Participants: []string{"Alpha", "Ghost"},
		MatchDate:    testToday,
	}, staffActor())
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}

func TestSchedulePlayerFixtureRequiresEnrollment(t *testing.T) {
	p1 := testPlayer(1, "REG-001", models.GenderFemale, 2024)
	p2 := testPlayer(2, "REG-002", models.GenderFemale, 2024)
	playerRepo := newFakePlayerRepo(p1, p2)
	participationRepo := &fakeParticipationRepo{}
	sprinter(participationRepo, p1)
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), playerRepo, participationRepo)

	_, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "sprint_100m",
		MatchType:    models.MatchFinal,
		Participants: []string{"REG-001", "REG-002"},
		MatchDate:    testToday,
	}, staffActor())
	if rule := validationRule(t, err); rule != RuleCompleteness {
		t.Fatalf("expected rule %q, got %q", RuleCompleteness, rule)
	}
}

func TestSchedulePlayerFixture(t *testing.T) {
	p1 := testPlayer(1, "REG-001", models.GenderFemale, 2024)
	p2 := testPlayer(2, "REG-002", models.GenderFemale, 2025)
	p3 := testPlayer(3, "REG-003", models.GenderFemale, 2024)
	playerRepo := newFakePlayerRepo(p1, p2, p3)
	participationRepo := &fakeParticipationRepo{}
	sprinter(participationRepo, p1)
	sprinter(participationRepo, p2)
	sprinter(participationRepo, p3)
	fixtureRepo := newFakeFixtureRepo()
	svc := newTestFixtureService(t, fixtureRepo, newFakeTeamRepo(), playerRepo, participationRepo)

	fixture, err := svc.ScheduleFixture(context.Background(), ScheduleFixtureInput{
		Sport:        "sprint_100m",
		MatchType:    models.MatchFinal,
		Participants: []string{"REG-001", "REG-002", "REG-003"},
		MatchDate:    testToday,
	}, staffActor())
	if err != nil {
		t.Fatalf("schedule fixture: %v", err)
	}
	if len(fixture.Participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(fixture.Participants))
	}
	for i, slot := range fixture.Participants {
		if slot.PlayerID == nil {
			t.Fatalf("slot %d has no player", i)
		}
	}
}

func TestScheduleLeagueRoundPairsAllTeams(t *testing.T) {
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 1, Name: "Alpha", Sport: "basketball", EventYear: 2026},
		&models.Team{ID: 2, Name: "Beta", Sport: "basketball", EventYear: 2026},
		&models.Team{ID: 3, Name: "Gamma", Sport: "basketball", EventYear: 2026},
	)
	playerRepo := newFakePlayerRepo()
	for id := 1; id <= 3; id++ {
		playerRepo.byTeam[id] = []models.Player{*testPlayer(id, "REG-00"+string(rune('0'+id)), models.GenderMale, 2024)}
	}
	fixtureRepo := newFakeFixtureRepo()
	svc := newTestFixtureService(t, fixtureRepo, teamRepo, playerRepo, &fakeParticipationRepo{})

	fixtures, err := svc.ScheduleLeagueRound(context.Background(), "basketball", testToday.AddDate(0, 0, 3), staffActor())
	if err != nil {
		t.Fatalf("schedule league round: %v", err)
	}
	if len(fixtures) != 3 {
		t.Fatalf("expected 3 pairings for 3 teams, got %d", len(fixtures))
	}
	for _, f := range fixtures {
		if f.MatchType != models.MatchLeague {
			t.Fatalf("expected league match type, got %q", f.MatchType)
		}
	}
}

func TestScheduleLeagueRoundRejectsMultiFormats(t *testing.T) {
	svc := newTestFixtureService(t, newFakeFixtureRepo(), newFakeTeamRepo(), newFakePlayerRepo(), &fakeParticipationRepo{})

	_, err := svc.ScheduleLeagueRound(context.Background(), "relay", testToday, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}
