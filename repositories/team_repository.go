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
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamNameConflict is the commit-time check for the unique
	// (name, sport, event_year) key. Two captains racing for the same name
	// both pass validation; exactly one survives this constraint.
	ErrTeamNameConflict   = errors.New("team name already taken for this sport and event year")
	ErrTeamCaptainInvalid = errors.New("team captain conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByNameSportYear(ctx context.Context, name, sport string, eventYear int) (*models.Team, error)
	GetByCaptain(ctx context.Context, captainID int, sport string, eventYear int) (*models.Team, error)
	ListBySportYear(ctx context.Context, sport string, eventYear int) ([]*models.Team, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Count(ctx context.Context, eventYear int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO teams (name, sport, event_year, captain_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		team.Name,
		team.Sport,
		team.EventYear,
		team.CaptainID,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "teams_name_sport_year_key" {
					return ErrTeamNameConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "teams_captain_id_fkey" {
					return ErrTeamCaptainInvalid
				}
			}
		}
		return storeError("create team", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, sport, event_year, captain_id, logo_key, created_at
		FROM teams
		WHERE id = $1`

	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) GetByNameSportYear(ctx context.Context, name, sport string, eventYear int) (*models.Team, error) {
	query := `
		SELECT id, name, sport, event_year, captain_id, logo_key, created_at
		FROM teams
		WHERE name = $1 AND sport = $2 AND event_year = $3`

	return r.scanTeam(r.db.QueryRowContext(ctx, query, name, sport, eventYear))
}

func (r *postgresTeamRepository) GetByCaptain(ctx context.Context, captainID int, sport string, eventYear int) (*models.Team, error) {
	query := `
		SELECT id, name, sport, event_year, captain_id, logo_key, created_at
		FROM teams
		WHERE captain_id = $1 AND sport = $2 AND event_year = $3`

	return r.scanTeam(r.db.QueryRowContext(ctx, query, captainID, sport, eventYear))
}

func (r *postgresTeamRepository) scanTeam(row *sql.Row) (*models.Team, error) {
	team := &models.Team{}
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Sport,
		&team.EventYear,
		&team.CaptainID,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, storeError("scan team", err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListBySportYear(ctx context.Context, sport string, eventYear int) ([]*models.Team, error) {
	query := `
		SELECT id, name, sport, event_year, captain_id, logo_key, created_at
		FROM teams
		WHERE sport = $1 AND event_year = $2
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, sport, eventYear)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list teams for %s", sport), err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Sport,
			&team.EventYear,
			&team.CaptainID,
			&team.LogoKey,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, storeError("scan team row", scanErr)
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate team rows", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return storeError(fmt.Sprintf("delete team %d", id), err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return storeError(fmt.Sprintf("update logo key for team %d", id), err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Count(ctx context.Context, eventYear int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE event_year = $1`, eventYear).Scan(&count)
	if err != nil {
		return 0, storeError("count teams", err)
	}
	return count, nil
}
