package models

import "time"

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "scheduled"
	FixtureCompleted FixtureStatus = "completed"
	FixtureDraw      FixtureStatus = "draw"
	FixtureCancelled FixtureStatus = "cancelled"
)

type MatchType string

const (
	MatchLeague   MatchType = "league"
	MatchKnockout MatchType = "knockout"
	MatchFinal    MatchType = "final"
)

// FixtureParticipant is one slot of a fixture. Exactly one of TeamID and
// PlayerID is set, depending on the sport type.
type FixtureParticipant struct {
	ID        int  `json:"id" db:"id"`
	FixtureID int  `json:"fixture_id" db:"fixture_id"`
	TeamID    *int `json:"team_id,omitempty" db:"team_id"`
	PlayerID  *int `json:"player_id,omitempty" db:"player_id"`

	Team   *Team   `json:"team,omitempty" db:"-"`
	Player *Player `json:"player,omitempty" db:"-"`
}

// Qualifier is one frozen ranking entry of a multi-format fixture.
// Positions are dense integers starting at 1.
type Qualifier struct {
	ParticipantID int `json:"participant_id" db:"participant_id"`
	Position      int `json:"position" db:"position"`
}

type Fixture struct {
	ID          int           `json:"id" db:"id"`
	Sport       string        `json:"sport" db:"sport"`
	EventYear   int           `json:"event_year" db:"event_year"`
	MatchType   MatchType     `json:"match_type" db:"match_type"`
	MatchNumber int           `json:"match_number" db:"match_number"`
	MatchDate   time.Time     `json:"match_date" db:"match_date"`
	Status      FixtureStatus `json:"status" db:"status"`
	WinnerID    *int          `json:"winner_id,omitempty" db:"winner_participant_id"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`

	Participants []FixtureParticipant `json:"participants,omitempty" db:"-"`
	Qualifiers   []Qualifier          `json:"qualifiers,omitempty" db:"-"`
}

// HasParticipant reports whether id is one of the fixture's participant slots.
func (f *Fixture) HasParticipant(id int) bool {
	for _, p := range f.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ResultRecorded reports whether the fixture holds any authoritative result:
// a terminal status, a winner, or frozen qualifiers.
func (f *Fixture) ResultRecorded() bool {
	return f.Status != FixtureScheduled || f.WinnerID != nil || len(f.Qualifiers) > 0
}

// ResultLocked reports whether the fixture's result is immutable: a winner
// has been set or qualifiers have been frozen.
func (f *Fixture) ResultLocked() bool {
	return f.WinnerID != nil || len(f.Qualifiers) > 0
}
