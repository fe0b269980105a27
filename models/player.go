package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type PlayerRole string

const (
	RolePlayer PlayerRole = "player"
	RoleStaff  PlayerRole = "staff"
	RoleAdmin  PlayerRole = "admin"
)

type Player struct {
	ID            int        `json:"id" db:"id"`
	RegNumber     string     `json:"reg_number" db:"reg_number"`
	FullName      string     `json:"full_name" db:"full_name"`
	Gender        Gender     `json:"gender" db:"gender"`
	AdmissionYear int        `json:"admission_year" db:"admission_year"`
	Department    string     `json:"department" db:"department"`
	Role          PlayerRole `json:"role" db:"role"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	// Populated by services, not mapped directly.
	CaptainIn      []string        `json:"captain_in,omitempty" db:"-"`
	Participations []Participation `json:"participated_in,omitempty" db:"-"`
}

// AcademicYear derives the player's year of study for a given event year.
// It is never stored, so it cannot go stale across fest editions.
func (p *Player) AcademicYear(eventYear int) int {
	return eventYear - p.AdmissionYear + 1
}

// Actor identifies who is performing an engine operation. Authorization is
// an explicit parameter of every mutating service call, not an ambient flag.
type Actor struct {
	PlayerID  int
	RegNumber string
	Role      PlayerRole
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

type Credentials struct {
	RegNumber string `json:"reg_number"`
	Password  string `json:"password"`
}
