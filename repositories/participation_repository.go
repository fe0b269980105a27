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
	ErrParticipationNotFound = errors.New("participation not found")
	// ErrParticipationConflict is the commit-time uniqueness check for
	// (player, sport, event_year). Pre-read snapshots are advisory only;
	// this constraint is the authoritative answer.
	ErrParticipationConflict      = errors.New("player already participates in this sport for this event year")
	ErrParticipationPlayerInvalid = errors.New("participation player conflict or invalid")
	ErrParticipationTeamInvalid   = errors.New("participation team conflict or invalid")
)

type ParticipationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error
	FindByPlayerSportYear(ctx context.Context, playerID int, sport string, eventYear int) (*models.Participation, error)
	ListByPlayer(ctx context.Context, playerID int, eventYear int) ([]models.Participation, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Participation, error)
	ReplacePlayer(ctx context.Context, exec SQLExecutor, teamID, oldPlayerID, newPlayerID int) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
	Count(ctx context.Context, eventYear int) (int, error)
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO participations (player_id, sport, event_year, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		p.PlayerID,
		p.Sport,
		p.EventYear,
		p.TeamID,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return r.handleParticipationError(err)
	}
	return nil
}

func (r *postgresParticipationRepository) FindByPlayerSportYear(ctx context.Context, playerID int, sport string, eventYear int) (*models.Participation, error) {
	query := `
		SELECT pt.id, pt.player_id, pt.sport, pt.event_year, pt.team_id, pt.created_at, t.name
		FROM participations pt
		LEFT JOIN teams t ON t.id = pt.team_id
		WHERE pt.player_id = $1 AND pt.sport = $2 AND pt.event_year = $3`

	p := &models.Participation{}
	err := r.db.QueryRowContext(ctx, query, playerID, sport, eventYear).Scan(
		&p.ID, &p.PlayerID, &p.Sport, &p.EventYear, &p.TeamID, &p.CreatedAt, &p.TeamName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, storeError("find participation", err)
	}
	return p, nil
}

func (r *postgresParticipationRepository) ListByPlayer(ctx context.Context, playerID int, eventYear int) ([]models.Participation, error) {
	query := `
		SELECT pt.id, pt.player_id, pt.sport, pt.event_year, pt.team_id, pt.created_at, t.name
		FROM participations pt
		LEFT JOIN teams t ON t.id = pt.team_id
		WHERE pt.player_id = $1 AND pt.event_year = $2
		ORDER BY pt.id ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID, eventYear)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list participations of player %d", playerID), err)
	}
	defer rows.Close()

	participations := make([]models.Participation, 0)
	for rows.Next() {
		var p models.Participation
		if scanErr := rows.Scan(&p.ID, &p.PlayerID, &p.Sport, &p.EventYear, &p.TeamID, &p.CreatedAt, &p.TeamName); scanErr != nil {
			return nil, storeError("scan participation row", scanErr)
		}
		participations = append(participations, p)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate participation rows", err)
	}
	return participations, nil
}

func (r *postgresParticipationRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Participation, error) {
	query := `
		SELECT id, player_id, sport, event_year, team_id, created_at
		FROM participations
		WHERE team_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list participations of team %d", teamID), err)
	}
	defer rows.Close()

	participations := make([]models.Participation, 0)
	for rows.Next() {
		var p models.Participation
		if scanErr := rows.Scan(&p.ID, &p.PlayerID, &p.Sport, &p.EventYear, &p.TeamID, &p.CreatedAt); scanErr != nil {
			return nil, storeError("scan participation row", scanErr)
		}
		participations = append(participations, p)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate participation rows", err)
	}
	return participations, nil
}

// ReplacePlayer rewrites one membership row to point at the new player. The
// unique (player_id, sport, event_year) constraint still guards the incoming
// player at commit time.
func (r *postgresParticipationRepository) ReplacePlayer(ctx context.Context, exec SQLExecutor, teamID, oldPlayerID, newPlayerID int) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE participations SET player_id = $1 WHERE team_id = $2 AND player_id = $3`
	result, err := exec.ExecContext(ctx, query, newPlayerID, teamID, oldPlayerID)
	if err != nil {
		return r.handleParticipationError(err)
	}
	return checkAffectedRows(result, ErrParticipationNotFound)
}

func (r *postgresParticipationRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `DELETE FROM participations WHERE team_id = $1`, teamID)
	if err != nil {
		return 0, storeError(fmt.Sprintf("delete participations of team %d", teamID), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, storeError("check affected rows", err)
	}
	return int(affected), nil
}

func (r *postgresParticipationRepository) Count(ctx context.Context, eventYear int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participations WHERE event_year = $1`, eventYear).Scan(&count)
	if err != nil {
		return 0, storeError("count participations", err)
	}
	return count, nil
}

func (r *postgresParticipationRepository) handleParticipationError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "participations_player_sport_year_key" {
				return ErrParticipationConflict
			}
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "participations_player_id_fkey":
				return ErrParticipationPlayerInvalid
			case "participations_team_id_fkey":
				return ErrParticipationTeamInvalid
			}
		}
	}
	return storeError("write participation", err)
}
