package scoring

import (
	"cmp"
	"slices"
	"time"
)

// Standing is a team's total before ranking.
type Standing struct {
	ID       string
	Score    int
	JoinedAt time.Time
}

// Ranked is a Standing with its competition rank.
type Ranked struct {
	Standing
	Rank int
}

// Rank orders standings by score descending, breaking ties by earlier
// JoinedAt (then ID), and assigns competition ranks: equal scores share a
// rank and the next distinct score skips by the size of the tie group
// (1, 1, 3, 4, ...).
func Rank(standings []Standing) []Ranked {
	sorted := slices.Clone(standings)
	slices.SortStableFunc(sorted, func(a, b Standing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ranked := make([]Ranked, len(sorted))
	for i, s := range sorted {
		rank := i + 1
		if i > 0 && s.Score == sorted[i-1].Score {
			rank = ranked[i-1].Rank
		}
		ranked[i] = Ranked{Standing: s, Rank: rank}
	}
	return ranked
}
