package models

import "time"

// Participation binds a player to a sport for one event year. TeamID is set
// when the enrollment happened through a team, nil for solo enrollment.
// The (player_id, sport, event_year) pair is unique at the database level.
type Participation struct {
	ID        int       `json:"id" db:"id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Sport     string    `json:"sport" db:"sport"`
	EventYear int       `json:"event_year" db:"event_year"`
	TeamID    *int      `json:"team_id,omitempty" db:"team_id"`
	TeamName  *string   `json:"team_name,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
