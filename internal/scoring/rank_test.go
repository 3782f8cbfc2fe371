package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/playperu/geoquiz/internal/scoring"
)

func ranksOf(r []scoring.Ranked) ([]string, []int) {
	ids := make([]string, len(r))
	ranks := make([]int, len(r))
	for i, e := range r {
		ids[i] = e.ID
		ranks[i] = e.Rank
	}
	return ids, ranks
}

func TestRank(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	at := func(s int) time.Time { return base.Add(time.Duration(s) * time.Second) }

	tests := []struct {
		name      string
		in        []scoring.Standing
		wantIDs   []string
		wantRanks []int
	}{
		{
			name:      "empty",
			in:        nil,
			wantIDs:   []string{},
			wantRanks: []int{},
		},
		{
			name: "tie shares rank and next skips",
			in: []scoring.Standing{
				{ID: "c", Score: 500, JoinedAt: at(0)},
				{ID: "a", Score: 1000, JoinedAt: at(1)},
				{ID: "b", Score: 1000, JoinedAt: at(2)},
			},
			wantIDs:   []string{"a", "b", "c"},
			wantRanks: []int{1, 1, 3},
		},
		{
			name: "earlier joiner listed first on tie",
			in: []scoring.Standing{
				{ID: "late", Score: 300, JoinedAt: at(10)},
				{ID: "early", Score: 300, JoinedAt: at(1)},
			},
			wantIDs:   []string{"early", "late"},
			wantRanks: []int{1, 1},
		},
		{
			name: "mixed groups",
			in: []scoring.Standing{
				{ID: "a", Score: 900, JoinedAt: at(0)},
				{ID: "b", Score: 700, JoinedAt: at(1)},
				{ID: "c", Score: 700, JoinedAt: at(2)},
				{ID: "d", Score: 700, JoinedAt: at(3)},
				{ID: "e", Score: 100, JoinedAt: at(4)},
				{ID: "f", Score: 0, JoinedAt: at(5)},
			},
			wantIDs:   []string{"a", "b", "c", "d", "e", "f"},
			wantRanks: []int{1, 2, 2, 2, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, ranks := ranksOf(scoring.Rank(tt.in))
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantRanks, ranks)
		})
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []scoring.Standing{{ID: "low", Score: 1}, {ID: "high", Score: 2}}
	scoring.Rank(in)
	assert.Equal(t, "low", in[0].ID)
}
