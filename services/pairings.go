package services

import "fmt"

// Pairing is one head-to-head matchup produced for a league round.
type Pairing struct {
	HomeID int
	AwayID int
}

// roundRobinPairings pairs every entrant against every other entrant exactly
// once, in a stable order: earlier entrants host later ones.
func roundRobinPairings(ids []int) ([]Pairing, error) {
	if len(ids) < 2 {
		return nil, fmt.Errorf("not enough entrants for a league round (found %d, min 2 required)", len(ids))
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("duplicate entrant %d in league round", id)
		}
		seen[id] = true
	}

	pairings := make([]Pairing, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairings = append(pairings, Pairing{HomeID: ids[i], AwayID: ids[j]})
		}
	}
	return pairings, nil
}
