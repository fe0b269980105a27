package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrCaptaincyNotFound      = errors.New("captaincy not found")
	ErrCaptaincyConflict      = errors.New("player is already a captain for this sport")
	ErrCaptaincyPlayerInvalid = errors.New("captaincy player conflict or invalid")
)

// CaptaincyRepository records which players are designated captains of which
// sports for an event year.
type CaptaincyRepository interface {
	Grant(ctx context.Context, playerID int, sport string, eventYear int) error
	Revoke(ctx context.Context, playerID int, sport string, eventYear int) error
	Exists(ctx context.Context, playerID int, sport string, eventYear int) (bool, error)
	ListSports(ctx context.Context, playerID int, eventYear int) ([]string, error)
	ListPlayerIDs(ctx context.Context, sport string, eventYear int) ([]int, error)
}

type postgresCaptaincyRepository struct {
	db *sql.DB
}

func NewPostgresCaptaincyRepository(db *sql.DB) CaptaincyRepository {
	return &postgresCaptaincyRepository{db: db}
}

func (r *postgresCaptaincyRepository) Grant(ctx context.Context, playerID int, sport string, eventYear int) error {
	query := `INSERT INTO captaincies (player_id, sport, event_year) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, playerID, sport, eventYear)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrCaptaincyConflict
			case "23503": // foreign_key_violation
				return ErrCaptaincyPlayerInvalid
			}
		}
		return storeError("grant captaincy", err)
	}
	return nil
}

func (r *postgresCaptaincyRepository) Revoke(ctx context.Context, playerID int, sport string, eventYear int) error {
	query := `DELETE FROM captaincies WHERE player_id = $1 AND sport = $2 AND event_year = $3`
	result, err := r.db.ExecContext(ctx, query, playerID, sport, eventYear)
	if err != nil {
		return storeError("revoke captaincy", err)
	}
	return checkAffectedRows(result, ErrCaptaincyNotFound)
}

func (r *postgresCaptaincyRepository) Exists(ctx context.Context, playerID int, sport string, eventYear int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM captaincies WHERE player_id = $1 AND sport = $2 AND event_year = $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, playerID, sport, eventYear).Scan(&exists); err != nil {
		return false, storeError("check captaincy", err)
	}
	return exists, nil
}

func (r *postgresCaptaincyRepository) ListSports(ctx context.Context, playerID int, eventYear int) ([]string, error) {
	query := `SELECT sport FROM captaincies WHERE player_id = $1 AND event_year = $2 ORDER BY sport ASC`
	rows, err := r.db.QueryContext(ctx, query, playerID, eventYear)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list captaincies of player %d", playerID), err)
	}
	defer rows.Close()

	sports := make([]string, 0)
	for rows.Next() {
		var sport string
		if scanErr := rows.Scan(&sport); scanErr != nil {
			return nil, storeError("scan captaincy row", scanErr)
		}
		sports = append(sports, sport)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate captaincy rows", err)
	}
	return sports, nil
}

func (r *postgresCaptaincyRepository) ListPlayerIDs(ctx context.Context, sport string, eventYear int) ([]int, error) {
	query := `SELECT player_id FROM captaincies WHERE sport = $1 AND event_year = $2`
	rows, err := r.db.QueryContext(ctx, query, sport, eventYear)
	if err != nil {
		return nil, storeError(fmt.Sprintf("list captains for %s", sport), err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, storeError("scan captain row", scanErr)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("iterate captain rows", err)
	}
	return ids, nil
}
