package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/lib/pq"
)

var (
	ErrFixtureNotFound = errors.New("fixture not found")
	// ErrFixtureStateConflict means the guarded update lost to a concurrent
	// writer: the fixture exists but is no longer in the expected state.
	ErrFixtureStateConflict       = errors.New("fixture is not in the expected state")
	ErrFixtureNumberConflict      = errors.New("fixture number already assigned, retry with fresh data")
	ErrFixtureParticipantInvalid  = errors.New("fixture participant conflict or invalid")
	ErrFixtureResultRecorded      = errors.New("fixture has a recorded result")
	ErrQualifiersAlreadyRecorded  = errors.New("qualifiers already recorded for fixture")
	ErrQualifierPositionDuplicate = errors.New("qualifier position already assigned")
)

type FixtureRepository interface {
	Create(ctx context.Context, fixture *models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListBySportYear(ctx context.Context, sport string, eventYear int) ([]*models.Fixture, error)
	UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error
	SetWinner(ctx context.Context, id int, participantID int) error
	SaveQualifiers(ctx context.Context, fixtureID int, qualifiers []models.Qualifier) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, eventYear int) (int, error)
	CountByStatus(ctx context.Context, eventYear int, status models.FixtureStatus) (int, error)
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

// Create inserts the fixture and its participant slots in one transaction.
// The match number is assigned from the current maximum for (sport, year);
// the unique index on (sport, event_year, match_number) resolves races.
func (r *postgresFixtureRepository) Create(ctx context.Context, fixture *models.Fixture) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin fixture tx", err)
	}
	defer tx.Rollback()

	insertFixture := `
		INSERT INTO fixtures (sport, event_year, match_type, match_number, match_date, status)
		SELECT $1, $2, $3, COALESCE(MAX(match_number), 0) + 1, $4, $5
		FROM fixtures
		WHERE sport = $1 AND event_year = $2
		RETURNING id, match_number, created_at`

	err = tx.QueryRowContext(ctx, insertFixture,
		fixture.Sport,
		fixture.EventYear,
		fixture.MatchType,
		fixture.MatchDate,
		fixture.Status,
	).Scan(&fixture.ID, &fixture.MatchNumber, &fixture.CreatedAt)
	if err != nil {
		return r.handleFixtureError(err)
	}

	insertParticipant := `
		INSERT INTO fixture_participants (fixture_id, team_id, player_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	for i := range fixture.Participants {
		p := &fixture.Participants[i]
		p.FixtureID = fixture.ID
		if err = tx.QueryRowContext(ctx, insertParticipant, fixture.ID, p.TeamID, p.PlayerID).Scan(&p.ID); err != nil {
			return r.handleFixtureError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return storeError("commit fixture tx", err)
	}
	return nil
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := `
		SELECT id, sport, event_year, match_type, match_number, match_date, status, winner_participant_id, created_at
		FROM fixtures
		WHERE id = $1`

	fixture := &models.Fixture{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&fixture.ID,
		&fixture.Sport,
		&fixture.EventYear,
		&fixture.MatchType,
		&fixture.MatchNumber,
		&fixture.MatchDate,
		&fixture.Status,
		&fixture.WinnerID,
		&fixture.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, storeError(fmt.Sprintf("get fixture %d", id), err)
	}

	if fixture.Participants, err = r.listParticipants(ctx, id); err != nil {
		return nil, err
	}
	if fixture.Qualifiers, err = r.listQualifiers(ctx, id); err != nil {
		return nil, err
	}
	return fixture, nil
}

func (r *postgresFixtureRepository) listParticipants(ctx context.Context, fixtureID int) ([]models.FixtureParticipant, error) {
	query := `
		SELECT id, fixture_id, team_id, player_id
		FROM fixture_participants
		WHERE fixture_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, fixtureID)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list participants of fixture %d", fixtureID), err)
	}
	defer rows.Close()

	participants := make([]models.FixtureParticipant, 0)
	for rows.Next() {
		var p models.FixtureParticipant
		if scanErr := rows.Scan(&p.ID, &p.FixtureID, &p.TeamID, &p.PlayerID); scanErr != nil {
			return nil, storeError("scan fixture participant row", scanErr)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate fixture participant rows", err)
	}
	return participants, nil
}

func (r *postgresFixtureRepository) listQualifiers(ctx context.Context, fixtureID int) ([]models.Qualifier, error) {
	query := `
		SELECT participant_id, position
		FROM fixture_qualifiers
		WHERE fixture_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, fixtureID)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list qualifiers of fixture %d", fixtureID), err)
	}
	defer rows.Close()

	qualifiers := make([]models.Qualifier, 0)
	for rows.Next() {
		var q models.Qualifier
		if scanErr := rows.Scan(&q.ParticipantID, &q.Position); scanErr != nil {
			return nil, storeError("scan qualifier row", scanErr)
		}
		qualifiers = append(qualifiers, q)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate qualifier rows", err)
	}
	return qualifiers, nil
}

func (r *postgresFixtureRepository) ListBySportYear(ctx context.Context, sport string, eventYear int) ([]*models.Fixture, error) {
	query := `
		SELECT id, sport, event_year, match_type, match_number, match_date, status, winner_participant_id, created_at
		FROM fixtures
		WHERE sport = $1 AND event_year = $2
		ORDER BY match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, sport, eventYear)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list fixtures for %s", sport), err)
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		var f models.Fixture
		if scanErr := rows.Scan(
			&f.ID,
			&f.Sport,
			&f.EventYear,
			&f.MatchType,
			&f.MatchNumber,
			&f.MatchDate,
			&f.Status,
			&f.WinnerID,
			&f.CreatedAt,
		); scanErr != nil {
			return nil, storeError("scan fixture row", scanErr)
		}
		fixtures = append(fixtures, &f)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate fixture rows", err)
	}
	return fixtures, nil
}

// UpdateStatus moves a scheduled fixture to a terminal status. The WHERE
// clause is the authoritative state check; a pre-read snapshot is advisory.
func (r *postgresFixtureRepository) UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error {
	query := `UPDATE fixtures SET status = $1 WHERE id = $2 AND status = $3 AND winner_participant_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, status, id, models.FixtureScheduled)
	if err != nil {
		return storeError(fmt.Sprintf("update status of fixture %d", id), err)
	}
	return r.resolveZeroRows(ctx, result, id)
}

// SetWinner assigns the winner exactly once: the row must be completed and
// must not already have a winner.
func (r *postgresFixtureRepository) SetWinner(ctx context.Context, id int, participantID int) error {
	query := `UPDATE fixtures SET winner_participant_id = $1 WHERE id = $2 AND status = $3 AND winner_participant_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, participantID, id, models.FixtureCompleted)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrFixtureParticipantInvalid
		}
		return storeError(fmt.Sprintf("set winner of fixture %d", id), err)
	}
	return r.resolveZeroRows(ctx, result, id)
}

// SaveQualifiers is the freeze commit: all positions land in one transaction
// or none do. Unique keys on (fixture_id, position) and
// (fixture_id, participant_id) reject a second freeze.
func (r *postgresFixtureRepository) SaveQualifiers(ctx context.Context, fixtureID int, qualifiers []models.Qualifier) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin qualifier tx", err)
	}
	defer tx.Rollback()

	var existing int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixture_qualifiers WHERE fixture_id = $1`, fixtureID).Scan(&existing); err != nil {
		return storeError("count existing qualifiers", err)
	}
	if existing > 0 {
		return ErrQualifiersAlreadyRecorded
	}

	insert := `INSERT INTO fixture_qualifiers (fixture_id, participant_id, position) VALUES ($1, $2, $3)`
	for _, q := range qualifiers {
		if _, err = tx.ExecContext(ctx, insert, fixtureID, q.ParticipantID, q.Position); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				switch pqErr.Code {
				case "23505":
					if pqErr.Constraint == "fixture_qualifiers_fixture_position_key" {
						return ErrQualifierPositionDuplicate
					}
					return ErrQualifiersAlreadyRecorded
				case "23503":
					return ErrFixtureParticipantInvalid
				}
			}
			return storeError("insert qualifier", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return storeError("commit qualifier tx", err)
	}
	return nil
}

// Delete removes a fixture only while it is still scheduled with no result.
func (r *postgresFixtureRepository) Delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM fixtures
		WHERE id = $1 AND status = $2 AND winner_participant_id IS NULL
		  AND NOT EXISTS (SELECT 1 FROM fixture_qualifiers q WHERE q.fixture_id = $1)`

	result, err := r.db.ExecContext(ctx, query, id, models.FixtureScheduled)
	if err != nil {
		return storeError(fmt.Sprintf("delete fixture %d", id), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storeError("check affected rows", err)
	}
	if affected == 0 {
		exists, existsErr := r.exists(ctx, id)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return ErrFixtureResultRecorded
		}
		return ErrFixtureNotFound
	}
	return nil
}

func (r *postgresFixtureRepository) Count(ctx context.Context, eventYear int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixtures WHERE event_year = $1`, eventYear).Scan(&count)
	if err != nil {
		return 0, storeError("count fixtures", err)
	}
	return count, nil
}

func (r *postgresFixtureRepository) CountByStatus(ctx context.Context, eventYear int, status models.FixtureStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixtures WHERE event_year = $1 AND status = $2`, eventYear, status).Scan(&count)
	if err != nil {
		return 0, storeError("count fixtures by status", err)
	}
	return count, nil
}

func (r *postgresFixtureRepository) exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM fixtures WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, storeError(fmt.Sprintf("check fixture %d", id), err)
	}
	return exists, nil
}

func (r *postgresFixtureRepository) resolveZeroRows(ctx context.Context, result sql.Result, id int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return storeError("check affected rows", err)
	}
	if affected > 0 {
		return nil
	}
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrFixtureStateConflict
	}
	return ErrFixtureNotFound
}

func (r *postgresFixtureRepository) handleFixtureError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "fixtures_sport_year_number_key" {
				return ErrFixtureNumberConflict
			}
		case "23503": // foreign_key_violation
			return ErrFixtureParticipantInvalid
		}
	}
	return storeError("write fixture", err)
}
