package models

type EventStats struct {
	PlayersTotal      int `json:"players_total"`
	TeamsTotal        int `json:"teams_total"`
	EnrollmentsTotal  int `json:"enrollments_total"`
	FixturesTotal     int `json:"fixtures_total"`
	FixturesScheduled int `json:"fixtures_scheduled"`
	FixturesResolved  int `json:"fixtures_resolved"`
}
