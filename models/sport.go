package models

type SportType string

const (
	SportDualTeam    SportType = "dual_team"
	SportMultiTeam   SportType = "multi_team"
	SportDualPlayer  SportType = "dual_player"
	SportMultiPlayer SportType = "multi_player"
	SportIndividual  SportType = "individual"
	SportCultural    SportType = "cultural"
)

// Sport is a read-only catalog entity; the engine never mutates it.
type Sport struct {
	Name     string    `json:"name" yaml:"name"`
	Type     SportType `json:"type" yaml:"type"`
	TeamSize int       `json:"team_size,omitempty" yaml:"team_size"`

	LogoKey *string `json:"-" yaml:"-"`
	LogoURL *string `json:"logo_url,omitempty" yaml:"-"`
}

// IsTeamSport reports whether registration happens through teams.
func (s *Sport) IsTeamSport() bool {
	return s.Type == SportDualTeam || s.Type == SportMultiTeam
}

// IsDual reports whether a fixture of this sport resolves to a single winner.
func (s *Sport) IsDual() bool {
	return s.Type == SportDualTeam || s.Type == SportDualPlayer
}

// IsMulti reports whether a fixture of this sport resolves to ranked qualifiers.
func (s *Sport) IsMulti() bool {
	return s.Type == SportMultiTeam || s.Type == SportMultiPlayer
}

// Schedulable reports whether fixtures can be created for this sport at all.
// Individual and cultural entries are enrollment-only.
func (s *Sport) Schedulable() bool {
	return s.IsDual() || s.IsMulti()
}
