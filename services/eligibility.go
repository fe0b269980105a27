package services

import (
	"github.com/Bekzat04/sportsfest-system/models"
)

// Candidate is one proposed registration: a set of resolved players against a
// sport. For team creation CaptainID is the submitting captain; for solo
// enrollment and fixture player selection it is zero.
type Candidate struct {
	CaptainID int
	Players   []*models.Player
	Slots     int
}

// RosterSnapshot is the point-in-time roster state the validator reads. It is
// always a best-effort pre-check: writers re-check uniqueness at commit time
// under the store's own constraints.
type RosterSnapshot struct {
	EventYear int
	// Participations holds the existing participation (if any) per candidate
	// player for the candidate's sport and event year.
	Participations map[int]*models.Participation
	// SportCaptains marks candidate players designated captain of this sport.
	SportCaptains map[int]bool
	// CaptainOfTeam marks candidate players already captaining a committed
	// team of this sport and event year.
	CaptainOfTeam map[int]bool
}

// EligibilityValidator evaluates registration rules in a fixed order, first
// failure wins. It is a pure function over its inputs; all writes happen in
// the calling service after acceptance.
type EligibilityValidator struct{}

func (EligibilityValidator) Validate(candidate Candidate, sport *models.Sport, snapshot *RosterSnapshot) error {
	if err := checkCompleteness(candidate); err != nil {
		return err
	}
	if err := checkSelfInclusion(candidate); err != nil {
		return err
	}
	if err := checkDuplicates(candidate); err != nil {
		return err
	}
	if err := checkHomogeneity(candidate, snapshot.EventYear); err != nil {
		return err
	}
	if err := checkCapacity(candidate, sport, snapshot); err != nil {
		return err
	}
	return checkCaptainExclusivity(candidate, sport, snapshot)
}

func checkCompleteness(c Candidate) error {
	if c.Slots <= 0 {
		return newValidationError(RuleCompleteness, "candidate requires at least one slot")
	}
	if len(c.Players) != c.Slots {
		return newValidationError(RuleCompleteness, "selection has %d of %d required players", len(c.Players), c.Slots)
	}
	for i, p := range c.Players {
		if p == nil {
			return newValidationError(RuleCompleteness, "slot %d is empty", i+1)
		}
	}
	return nil
}

func checkSelfInclusion(c Candidate) error {
	if c.CaptainID == 0 {
		return nil
	}
	for _, p := range c.Players {
		if p.ID == c.CaptainID {
			return nil
		}
	}
	return newValidationError(RuleSelfInclusion, "the submitting captain must be part of the team")
}

func checkDuplicates(c Candidate) error {
	seen := make(map[int]bool, len(c.Players))
	for _, p := range c.Players {
		if seen[p.ID] {
			return newValidationError(RuleDuplicate, "player %s selected more than once", p.RegNumber)
		}
		seen[p.ID] = true
	}
	return nil
}

func checkHomogeneity(c Candidate, eventYear int) error {
	if len(c.Players) < 2 {
		return nil
	}
	first := c.Players[0]
	for _, p := range c.Players[1:] {
		if p.Gender != first.Gender {
			return newValidationError(RuleHomogeneity, "players %s and %s differ in gender", first.RegNumber, p.RegNumber)
		}
		if p.AcademicYear(eventYear) != first.AcademicYear(eventYear) {
			return newValidationError(RuleHomogeneity,
				"players %s (year %d) and %s (year %d) differ in academic year",
				first.RegNumber, first.AcademicYear(eventYear), p.RegNumber, p.AcademicYear(eventYear))
		}
	}
	return nil
}

func checkCapacity(c Candidate, sport *models.Sport, snapshot *RosterSnapshot) error {
	for _, p := range c.Players {
		if existing := snapshot.Participations[p.ID]; existing != nil {
			if existing.TeamName != nil {
				return newValidationError(RuleCapacity,
					"player %s already plays %s for team %s", p.RegNumber, sport.Name, *existing.TeamName)
			}
			return newValidationError(RuleCapacity,
				"player %s already participates in %s", p.RegNumber, sport.Name)
		}
	}
	if c.CaptainID != 0 && snapshot.CaptainOfTeam[c.CaptainID] {
		return newValidationError(RuleCapacity, "captain already registered a team for %s", sport.Name)
	}
	return nil
}

func checkCaptainExclusivity(c Candidate, sport *models.Sport, snapshot *RosterSnapshot) error {
	captains := 0
	for _, p := range c.Players {
		if snapshot.SportCaptains[p.ID] {
			captains++
		}
	}
	if captains > 1 {
		return newValidationError(RuleCaptainExclusivity,
			"selection contains %d captains of %s, at most one allowed", captains, sport.Name)
	}
	return nil
}
