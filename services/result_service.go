package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/live"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
)

// FixtureBroadcaster pushes fixture changes to live subscribers.
type FixtureBroadcaster interface {
	BroadcastToRoom(room string, message live.Message)
}

// ResultService advances a fixture through its status transitions and
// resolves winners (dual formats) or ranked qualifiers (multi formats).
//
// Transitions: scheduled -> {completed, draw, cancelled}. A completed dual
// fixture takes exactly one winner; a completed multi fixture accumulates
// staged nominations and a single freeze commits them. Everything else is
// rejected with a state or temporal guard.
type ResultService interface {
	ResolveStatus(ctx context.Context, fixtureID int, status models.FixtureStatus, actor models.Actor) (*models.Fixture, error)
	SetWinner(ctx context.Context, fixtureID, participantID int, actor models.Actor) (*models.Fixture, error)
	NominateQualifier(ctx context.Context, fixtureID, participantID int, actor models.Actor) (int, error)
	FreezeQualifiers(ctx context.Context, fixtureID int, actor models.Actor) (*models.Fixture, error)
	DeleteFixture(ctx context.Context, fixtureID int, actor models.Actor) error
}

type resultService struct {
	fixtureRepo repositories.FixtureRepository
	staging     repositories.QualifierStaging
	sports      catalog.SportCatalog
	hub         FixtureBroadcaster
	logger      *slog.Logger
	now         func() time.Time
}

func NewResultService(
	fixtureRepo repositories.FixtureRepository,
	staging repositories.QualifierStaging,
	sports catalog.SportCatalog,
	hub FixtureBroadcaster,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		fixtureRepo: fixtureRepo,
		staging:     staging,
		sports:      sports,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *resultService) ResolveStatus(ctx context.Context, fixtureID int, status models.FixtureStatus, actor models.Actor) (*models.Fixture, error) {
	if !actor.IsStaff() {
		return nil, ErrForbiddenOperation
	}
	switch status {
	case models.FixtureCompleted, models.FixtureDraw, models.FixtureCancelled:
	default:
		return nil, newValidationError(RuleCompleteness, "invalid target status %q", status)
	}

	fixture, err := s.loadPlayable(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if fixture.Status != models.FixtureScheduled {
		return nil, ErrLockedResult
	}

	// The WHERE clause of the update is the authoritative check; losing the
	// race to another writer reads the same as an already-resolved fixture.
	if err = s.fixtureRepo.UpdateStatus(ctx, fixtureID, status); err != nil {
		return nil, mapFixtureWriteError(err)
	}

	fixture.Status = status
	s.broadcast(live.MessageFixtureUpdated, fixture)
	return fixture, nil
}

func (s *resultService) SetWinner(ctx context.Context, fixtureID, participantID int, actor models.Actor) (*models.Fixture, error) {
	if !actor.IsStaff() {
		return nil, ErrForbiddenOperation
	}

	fixture, sport, err := s.loadPlayableWithSport(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if !sport.IsDual() {
		return nil, newValidationError(RuleCompleteness, "%s fixtures resolve by qualifiers, not a single winner", sport.Name)
	}
	if fixture.WinnerID != nil {
		return nil, ErrLockedResult
	}
	if fixture.Status != models.FixtureCompleted {
		return nil, newValidationError(RuleCompleteness, "winner can only be set on a completed fixture, status is %q", fixture.Status)
	}
	if !fixture.HasParticipant(participantID) {
		return nil, newValidationError(RuleCompleteness, "winner must be one of the fixture's participants")
	}

	if err = s.fixtureRepo.SetWinner(ctx, fixtureID, participantID); err != nil {
		return nil, mapFixtureWriteError(err)
	}

	fixture.WinnerID = &participantID
	s.broadcast(live.MessageFixtureUpdated, fixture)
	return fixture, nil
}

// NominateQualifier stages one qualifier for a completed multi fixture. The
// staged list is durable but never authoritative; only the freeze commits.
func (s *resultService) NominateQualifier(ctx context.Context, fixtureID, participantID int, actor models.Actor) (int, error) {
	if !actor.IsStaff() {
		return 0, ErrForbiddenOperation
	}

	fixture, sport, err := s.loadPlayableWithSport(ctx, fixtureID)
	if err != nil {
		return 0, err
	}
	if !sport.IsMulti() {
		return 0, newValidationError(RuleCompleteness, "%s fixtures resolve by a single winner, not qualifiers", sport.Name)
	}
	if len(fixture.Qualifiers) > 0 {
		return 0, ErrLockedResult
	}
	if fixture.Status != models.FixtureCompleted {
		return 0, newValidationError(RuleCompleteness, "qualifiers can only be nominated on a completed fixture, status is %q", fixture.Status)
	}
	if !fixture.HasParticipant(participantID) {
		return 0, newValidationError(RuleCompleteness, "qualifier must be one of the fixture's participants")
	}

	position, err := s.staging.Nominate(ctx, fixtureID, participantID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrQualifierAlreadyStaged):
			return 0, newValidationError(RuleDuplicate, "participant already nominated for this fixture")
		case errors.Is(err, repositories.ErrStagingContention):
			return 0, asConflict(ErrConflict)
		default:
			return 0, err
		}
	}
	return position, nil
}

// FreezeQualifiers converts the staged nomination order into the immutable
// ranked result: positions 1..N, dense, committed in one transaction.
func (s *resultService) FreezeQualifiers(ctx context.Context, fixtureID int, actor models.Actor) (*models.Fixture, error) {
	if !actor.IsStaff() {
		return nil, ErrForbiddenOperation
	}

	fixture, sport, err := s.loadPlayableWithSport(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if !sport.IsMulti() {
		return nil, newValidationError(RuleCompleteness, "%s fixtures resolve by a single winner, not qualifiers", sport.Name)
	}
	if len(fixture.Qualifiers) > 0 {
		return nil, ErrLockedResult
	}
	if fixture.Status != models.FixtureCompleted {
		return nil, newValidationError(RuleCompleteness, "qualifiers can only be frozen on a completed fixture, status is %q", fixture.Status)
	}

	staged, err := s.staging.List(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return nil, newValidationError(RuleCompleteness, "no qualifiers nominated")
	}

	qualifiers := make([]models.Qualifier, 0, len(staged))
	for i, participantID := range staged {
		if !fixture.HasParticipant(participantID) {
			return nil, newValidationError(RuleCompleteness, "staged participant %d no longer belongs to the fixture", participantID)
		}
		qualifiers = append(qualifiers, models.Qualifier{ParticipantID: participantID, Position: i + 1})
	}

	if err = s.fixtureRepo.SaveQualifiers(ctx, fixtureID, qualifiers); err != nil {
		return nil, mapFixtureWriteError(err)
	}

	if err = s.staging.Clear(ctx, fixtureID); err != nil {
		// The commit already happened; a dangling stage is harmless because
		// frozen fixtures reject further nominations.
		s.logger.Warn("failed to clear qualifier staging after freeze",
			slog.Int("fixture_id", fixtureID), slog.Any("error", err))
	}

	fixture.Qualifiers = qualifiers
	s.broadcast(live.MessageResultFrozen, fixture)
	return fixture, nil
}

// DeleteFixture removes a fixture that has no recorded result. Fixtures with
// a winner, frozen qualifiers, or a terminal status are preserved for
// historical integrity.
func (s *resultService) DeleteFixture(ctx context.Context, fixtureID int, actor models.Actor) error {
	if !actor.IsStaff() {
		return ErrForbiddenOperation
	}

	fixture, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return mapFixtureReadError(err)
	}
	if fixture.ResultRecorded() {
		return ErrIrreversibleResult
	}

	if err = s.fixtureRepo.Delete(ctx, fixtureID); err != nil {
		return mapFixtureWriteError(err)
	}

	if err = s.staging.Clear(ctx, fixtureID); err != nil {
		s.logger.Warn("failed to clear qualifier staging after delete",
			slog.Int("fixture_id", fixtureID), slog.Any("error", err))
	}

	s.broadcast(live.MessageFixtureDeleted, fixture)
	return nil
}

// loadPlayable reads the fixture and applies the hard temporal guard: a
// fixture dated strictly in the future accepts no result mutation at all.
func (s *resultService) loadPlayable(ctx context.Context, fixtureID int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, mapFixtureReadError(err)
	}
	if dateOnly(fixture.MatchDate).After(dateOnly(s.now())) {
		return nil, ErrNotYetPlayable
	}
	return fixture, nil
}

func (s *resultService) loadPlayableWithSport(ctx context.Context, fixtureID int) (*models.Fixture, *models.Sport, error) {
	fixture, err := s.loadPlayable(ctx, fixtureID)
	if err != nil {
		return nil, nil, err
	}
	sport, err := s.sports.Get(fixture.Sport)
	if err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			return nil, nil, ErrSportNotFound
		}
		return nil, nil, err
	}
	return fixture, sport, nil
}

func (s *resultService) broadcast(messageType string, fixture *models.Fixture) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomForSport(fixture.Sport), live.Message{
		Type:    messageType,
		Payload: fixture,
	})
}

func mapFixtureWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrFixtureNotFound):
		return ErrFixtureNotFound
	case errors.Is(err, repositories.ErrFixtureStateConflict):
		return ErrLockedResult
	case errors.Is(err, repositories.ErrQualifiersAlreadyRecorded):
		return ErrLockedResult
	case errors.Is(err, repositories.ErrFixtureResultRecorded):
		return ErrIrreversibleResult
	default:
		return err
	}
}
