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
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerRegNumConflict  = errors.New("registration number already in use")
	ErrPlayerInvalidArgument = errors.New("invalid player data")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByRegNumber(ctx context.Context, regNumber string) (*models.Player, error)
	ListByRegNumbers(ctx context.Context, regNumbers []string) ([]*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Player, error)
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Count(ctx context.Context) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, reg_number, full_name, gender, admission_year, department, role, password_hash, photo_key, created_at`

func scanPlayer(row interface{ Scan(...interface{}) error }, p *models.Player) error {
	return row.Scan(
		&p.ID,
		&p.RegNumber,
		&p.FullName,
		&p.Gender,
		&p.AdmissionYear,
		&p.Department,
		&p.Role,
		&p.PasswordHash,
		&p.PhotoKey,
		&p.CreatedAt,
	)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (reg_number, full_name, gender, admission_year, department, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.RegNumber,
		player.FullName,
		player.Gender,
		player.AdmissionYear,
		player.Department,
		player.Role,
		player.PasswordHash,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "players_reg_number_key" {
					return ErrPlayerRegNumConflict
				}
			case "23514": // check_violation
				return ErrPlayerInvalidArgument
			}
		}
		return storeError("create player", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE id = $1`, playerColumns)

	player := &models.Player{}
	err := scanPlayer(r.db.QueryRowContext(ctx, query, id), player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, storeError(fmt.Sprintf("get player %d", id), err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetByRegNumber(ctx context.Context, regNumber string) (*models.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE reg_number = $1`, playerColumns)

	player := &models.Player{}
	err := scanPlayer(r.db.QueryRowContext(ctx, query, regNumber), player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, storeError(fmt.Sprintf("get player %s", regNumber), err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByRegNumbers(ctx context.Context, regNumbers []string) ([]*models.Player, error) {
	if len(regNumbers) == 0 {
		return []*models.Player{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM players WHERE reg_number = ANY($1)`, playerColumns)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(regNumbers))
	if err != nil {
		return nil, storeError("list players by reg numbers", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0, len(regNumbers))
	for rows.Next() {
		var p models.Player
		if scanErr := scanPlayer(rows, &p); scanErr != nil {
			return nil, storeError("scan player row", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate player rows", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players p
		JOIN participations pt ON pt.player_id = p.id
		WHERE pt.team_id = $1
		ORDER BY p.id ASC`, prefixedPlayerColumns("p"))

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list players of team %d", teamID), err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := scanPlayer(rows, &p); scanErr != nil {
			return nil, storeError("scan team member row", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate team member rows", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	query := `UPDATE players SET photo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return storeError(fmt.Sprintf("update photo key for player %d", id), err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	if err != nil {
		return 0, storeError("count players", err)
	}
	return count, nil
}

func prefixedPlayerColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.reg_number, %[1]s.full_name, %[1]s.gender, %[1]s.admission_year, %[1]s.department, %[1]s.role, %[1]s.password_hash, %[1]s.photo_key, %[1]s.created_at`, alias)
}
