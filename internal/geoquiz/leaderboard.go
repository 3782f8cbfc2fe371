package geoquiz

import (
	"cmp"
	"slices"

	"github.com/playperu/geoquiz/internal/scoring"
)

// BuildLeaderboard totals each team's guesses from revealed rounds only,
// so unrevealed scores never leak into standings, then ranks the teams.
func BuildLeaderboard(teams []Team, rounds []Round, guesses []Guess) []LeaderboardEntry {
	revealed := make(map[string]int, len(rounds))
	for _, r := range rounds {
		if r.Status.Revealed() {
			revealed[r.ID] = r.Number
		}
	}

	totals := make(map[string]int, len(teams))
	history := make(map[string][]RoundScore, len(teams))
	for _, g := range guesses {
		num, ok := revealed[g.RoundID]
		if !ok {
			continue
		}
		totals[g.TeamID] += g.Score
		history[g.TeamID] = append(history[g.TeamID], RoundScore{RoundNumber: num, Score: g.Score})
	}

	standings := make([]scoring.Standing, len(teams))
	names := make(map[string]string, len(teams))
	for i, t := range teams {
		standings[i] = scoring.Standing{ID: t.ID, Score: totals[t.ID], JoinedAt: t.JoinedAt}
		names[t.ID] = t.Name
	}

	ranked := scoring.Rank(standings)
	entries := make([]LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		h := history[r.ID]
		slices.SortFunc(h, func(a, b RoundScore) int { return cmp.Compare(a.RoundNumber, b.RoundNumber) })
		if h == nil {
			h = []RoundScore{}
		}
		entries[i] = LeaderboardEntry{
			TeamID:   r.ID,
			TeamName: names[r.ID],
			Score:    r.Score,
			Rank:     r.Rank,
			History:  h,
		}
	}
	return entries
}
