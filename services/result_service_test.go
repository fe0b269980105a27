package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Bekzat04/sportsfest-system/live"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
)

var testToday = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestResultService(t *testing.T, fixtureRepo *fakeFixtureRepo, staging *fakeStaging, hub *fakeBroadcaster) *resultService {
	t.Helper()
	return &resultService{
		fixtureRepo: fixtureRepo,
		staging:     staging,
		sports:      testCatalog(t),
		hub:         hub,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         func() time.Time { return testToday },
	}
}

func dualFixture(id int, status models.FixtureStatus, matchDate time.Time) *models.Fixture {
	home, away := 1, 2
	return &models.Fixture{
		ID:        id,
		Sport:     "football",
		EventYear: 2026,
		MatchType: models.MatchLeague,
		MatchDate: matchDate,
		Status:    status,
		Participants: []models.FixtureParticipant{
			{ID: 11, FixtureID: id, TeamID: &home},
			{ID: 12, FixtureID: id, TeamID: &away},
		},
	}
}

func multiFixture(id int, status models.FixtureStatus, matchDate time.Time) *models.Fixture {
	a, b, c := 1, 2, 3
	return &models.Fixture{
		ID:        id,
		Sport:     "sprint_100m",
		EventYear: 2026,
		MatchType: models.MatchFinal,
		MatchDate: matchDate,
		Status:    status,
		Participants: []models.FixtureParticipant{
			{ID: 21, FixtureID: id, PlayerID: &a},
			{ID: 22, FixtureID: id, PlayerID: &b},
			{ID: 23, FixtureID: id, PlayerID: &c},
		},
	}
}

func TestResolveStatusRejectsFutureFixture(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureScheduled, testToday.AddDate(0, 0, 2)))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.ResolveStatus(context.Background(), 1, models.FixtureCompleted, staffActor())
	if !errors.Is(err, ErrNotYetPlayable) {
		t.Fatalf("expected ErrNotYetPlayable, got %v", err)
	}
}

func TestResolveStatusSameDayIsPlayable(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureScheduled, testToday.Add(6*time.Hour)))
	hub := &fakeBroadcaster{}
	svc := newTestResultService(t, repo, newFakeStaging(), hub)

	fixture, err := svc.ResolveStatus(context.Background(), 1, models.FixtureCompleted, staffActor())
	if err != nil {
		t.Fatalf("resolve status: %v", err)
	}
	if fixture.Status != models.FixtureCompleted {
		t.Fatalf("expected completed, got %q", fixture.Status)
	}
	if len(hub.messages) != 1 || hub.messages[0].Type != live.MessageFixtureUpdated {
		t.Fatalf("expected one FIXTURE_UPDATED broadcast, got %+v", hub.messages)
	}
	if hub.rooms[0] != live.RoomForSport("football") {
		t.Fatalf("expected broadcast to football room, got %q", hub.rooms[0])
	}
}

func TestResolveStatusRejectsNonStaff(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureScheduled, testToday))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	player := testPlayer(1, "REG-001", models.GenderMale, 2024)
	_, err := svc.ResolveStatus(context.Background(), 1, models.FixtureCompleted, playerActor(player))
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}
}

func TestResolveStatusLockedOnTerminalFixture(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureCancelled, testToday))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.ResolveStatus(context.Background(), 1, models.FixtureDraw, staffActor())
	if !errors.Is(err, ErrLockedResult) {
		t.Fatalf("expected ErrLockedResult, got %v", err)
	}
}

func TestSetWinnerIsOneShot(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureCompleted, testToday))
	hub := &fakeBroadcaster{}
	svc := newTestResultService(t, repo, newFakeStaging(), hub)

	fixture, err := svc.SetWinner(context.Background(), 1, 11, staffActor())
	if err != nil {
		t.Fatalf("set winner: %v", err)
	}
	if fixture.WinnerID == nil || *fixture.WinnerID != 11 {
		t.Fatalf("expected winner 11, got %v", fixture.WinnerID)
	}

	if _, err = svc.SetWinner(context.Background(), 1, 12, staffActor()); !errors.Is(err, ErrLockedResult) {
		t.Fatalf("expected second winner write to fail with ErrLockedResult, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), 1)
	if stored.WinnerID == nil || *stored.WinnerID != 11 {
		t.Fatalf("stored winner changed, got %v", stored.WinnerID)
	}
}

func TestSetWinnerRejectsOutsideParticipant(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureCompleted, testToday))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.SetWinner(context.Background(), 1, 99, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestSetWinnerRejectsMultiFormat(t *testing.T) {
	repo := newFakeFixtureRepo(multiFixture(1, models.FixtureCompleted, testToday))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.SetWinner(context.Background(), 1, 21, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestSetWinnerRequiresCompletedStatus(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureScheduled, testToday))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.SetWinner(context.Background(), 1, 11, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestNominateQualifierAssignsPositionsInOrder(t *testing.T) {
	repo := newFakeFixtureRepo(multiFixture(1, models.FixtureCompleted, testToday))
	staging := newFakeStaging()
	svc := newTestResultService(t, repo, staging, &fakeBroadcaster{})

	for i, participantID := range []int{22, 21, 23} {
		pos, err := svc.NominateQualifier(context.Background(), 1, participantID, staffActor())
		if err != nil {
			t.Fatalf("nominate %d: %v", participantID, err)
		}
		if pos != i+1 {
			t.Fatalf("expected position %d, got %d", i+1, pos)
		}
	}
}

func TestNominateQualifierRejectsDuplicateWithoutReordering(t *testing.T) {
	repo := newFakeFixtureRepo(multiFixture(1, models.FixtureCompleted, testToday))
	staging := newFakeStaging()
	svc := newTestResultService(t, repo, staging, &fakeBroadcaster{})

	if _, err := svc.NominateQualifier(context.Background(), 1, 21, staffActor()); err != nil {
		t.Fatalf("first nomination: %v", err)
	}
	if _, err := svc.NominateQualifier(context.Background(), 1, 22, staffActor()); err != nil {
		t.Fatalf("second nomination: %v", err)
	}

	_, err := svc.NominateQualifier(context.Background(), 1, 21, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure for duplicate, got %v", err)
	}
	if rule := validationRule(t, err); rule != RuleDuplicate {
		t.Fatalf("expected rule %q, got %q", RuleDuplicate, rule)
	}

	staged, _ := staging.List(context.Background(), 1)
	if len(staged) != 2 || staged[0] != 21 || staged[1] != 22 {
		t.Fatalf("staged order changed after rejected duplicate: %v", staged)
	}
}

func TestNominateQualifierContentionIsConflict(t *testing.T) {
	repo := newFakeFixtureRepo(multiFixture(1, models.FixtureCompleted, testToday))
	staging := newFakeStaging()
	staging.nominateErr = repositories.ErrStagingContention
	svc := newTestResultService(t, repo, staging, &fakeBroadcaster{})

	_, err := svc.NominateQualifier(context.Background(), 1, 21, staffActor())
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestFreezeQualifiersCommitsDensePositions(t *testing.T) {
	repo := newFakeFixtureRepo(multiFixture(1, models.FixtureCompleted, testToday))
	staging := newFakeStaging()
	hub := &fakeBroadcaster{}
	svc := newTestResultService(t, repo, staging, hub)

	for _, participantID := range []int{23, 21} {
		if _, err := svc.NominateQualifier(context.Background(), 1, participantID, staffActor()); err != nil {
			t.Fatalf("nominate %d: %v", participantID, err)
		}
	}

	fixture, err := svc.FreezeQualifiers(context.Background(), 1, staffActor())
	if err != nil {
		t.Fatalf("freeze: %v", err)
	}

	want := []models.Qualifier{{ParticipantID: 23, Position: 1}, {ParticipantID: 21, Position: 2}}
	if len(fixture.Qualifiers) != len(want) {
		t.Fatalf("expected %d qualifiers, got %d", len(want), len(fixture.Qualifiers))
	}
	for i, q := range fixture.Qualifiers {
		if q != want[i] {
			t.Fatalf("qualifier %d: expected %+v, got %+v", i, want[i], q)
		}
	}

	if len(staging.cleared) != 1 || staging.cleared[0] != 1 {
		t.Fatalf("expected staging cleared for fixture 1, got %v", staging.cleared)
	}
	if len(hub.messages) != 1 || hub.messages[0].Type != live.MessageResultFrozen {
		t.Fatalf("expected one RESULT_FROZEN broadcast, got %+v", hub.messages)
	}
}

func TestFreezeQualifiersRejectsEmptyStage(t *testing.T) {
	repo := newFakeFixtureRepo(multiFixture(1, models.FixtureCompleted, testToday))
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.FreezeQualifiers(context.Background(), 1, staffActor())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestFreezeQualifiersIsOneShot(t *testing.T) {
	fixture := multiFixture(1, models.FixtureCompleted, testToday)
	fixture.Qualifiers = []models.Qualifier{{ParticipantID: 21, Position: 1}}
	repo := newFakeFixtureRepo(fixture)
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	_, err := svc.FreezeQualifiers(context.Background(), 1, staffActor())
	if !errors.Is(err, ErrLockedResult) {
		t.Fatalf("expected ErrLockedResult, got %v", err)
	}
}

func TestDeleteFixtureWithResultIsIrreversible(t *testing.T) {
	winner := 11
	fixture := dualFixture(1, models.FixtureCompleted, testToday)
	fixture.WinnerID = &winner
	repo := newFakeFixtureRepo(fixture)
	svc := newTestResultService(t, repo, newFakeStaging(), &fakeBroadcaster{})

	err := svc.DeleteFixture(context.Background(), 1, staffActor())
	if !errors.Is(err, ErrIrreversibleResult) {
		t.Fatalf("expected ErrIrreversibleResult, got %v", err)
	}
	if _, err = repo.GetByID(context.Background(), 1); err != nil {
		t.Fatalf("fixture should survive rejected delete: %v", err)
	}
}

func TestDeleteScheduledFixtureClearsStaging(t *testing.T) {
	repo := newFakeFixtureRepo(dualFixture(1, models.FixtureScheduled, testToday.AddDate(0, 0, 5)))
	staging := newFakeStaging()
	hub := &fakeBroadcaster{}
	svc := newTestResultService(t, repo, staging, hub)

	if err := svc.DeleteFixture(context.Background(), 1, staffActor()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), 1); !errors.Is(err, repositories.ErrFixtureNotFound) {
		t.Fatalf("expected fixture gone, got %v", err)
	}
	if len(staging.cleared) != 1 {
		t.Fatalf("expected staging cleared, got %v", staging.cleared)
	}
	if len(hub.messages) != 1 || hub.messages[0].Type != live.MessageFixtureDeleted {
		t.Fatalf("expected one FIXTURE_DELETED broadcast, got %+v", hub.messages)
	}
}
