package geoquiz_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

var now = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func playingGame() *geoquiz.Game {
	return &geoquiz.Game{ID: "g1", Status: geoquiz.GameStatusPlaying, CurrentRound: 1}
}

func roundIn(status geoquiz.RoundStatus) *geoquiz.Round {
	return &geoquiz.Round{ID: "r1", GameID: "g1", Number: 1, Status: status, TimeLimitSeconds: 30}
}

var allActions = []geoquiz.RoundAction{
	geoquiz.RoundStart,
	geoquiz.RoundCountdown,
	geoquiz.RoundReveal,
	geoquiz.RoundComplete,
}

func TestTransitionMatrix(t *testing.T) {
	allowed := map[geoquiz.RoundStatus]map[geoquiz.RoundAction]geoquiz.RoundStatus{
		geoquiz.RoundStatusPending:   {geoquiz.RoundStart: geoquiz.RoundStatusShowing},
		geoquiz.RoundStatusShowing:   {geoquiz.RoundCountdown: geoquiz.RoundStatusGuessing, geoquiz.RoundReveal: geoquiz.RoundStatusReveal},
		geoquiz.RoundStatusGuessing:  {geoquiz.RoundReveal: geoquiz.RoundStatusReveal},
		geoquiz.RoundStatusReveal:    {geoquiz.RoundComplete: geoquiz.RoundStatusCompleted},
		geoquiz.RoundStatusCompleted: {},
	}

	for from, ok := range allowed {
		for _, action := range allActions {
			t.Run(string(from)+"/"+string(action), func(t *testing.T) {
				g := playingGame()
				r := roundIn(from)
				before := *r

				err := geoquiz.Transition(g, r, action, true, now)

				if want, permitted := ok[action]; permitted {
					require.NoError(t, err)
					assert.Equal(t, want, r.Status)
					return
				}
				require.Error(t, err)
				assert.True(t, errors.Is(err, geoquiz.ErrInvalidState), "got %v", err)
				assert.Equal(t, before, *r, "failed transition must not mutate the round")
			})
		}
	}
}

func TestTransitionEffects(t *testing.T) {
	g := playingGame()
	r := roundIn(geoquiz.RoundStatusPending)

	require.NoError(t, geoquiz.Transition(g, r, geoquiz.RoundStart, true, now))
	require.NotNil(t, r.StartedAt)
	assert.Equal(t, now, *r.StartedAt)

	countdownAt := now.Add(4 * time.Second)
	require.NoError(t, geoquiz.Transition(g, r, geoquiz.RoundCountdown, true, countdownAt))
	require.NotNil(t, r.Deadline)
	assert.Equal(t, countdownAt.Add(30*time.Second), *r.Deadline)
	assert.Equal(t, countdownAt, *r.GuessingStartedAt)

	require.NoError(t, geoquiz.Transition(g, r, geoquiz.RoundReveal, true, now.Add(40*time.Second)))
	assert.NotNil(t, r.RevealedAt)

	require.NoError(t, geoquiz.Transition(g, r, geoquiz.RoundComplete, true, now.Add(50*time.Second)))
	assert.NotNil(t, r.CompletedAt)
	assert.Equal(t, 2, g.CurrentRound)
	assert.Equal(t, geoquiz.GameStatusPlaying, g.Status)
}

func TestCompleteLastRoundFinishesGame(t *testing.T) {
	g := playingGame()
	r := roundIn(geoquiz.RoundStatusReveal)

	require.NoError(t, geoquiz.Transition(g, r, geoquiz.RoundComplete, false, now))
	assert.Equal(t, geoquiz.GameStatusFinished, g.Status)
	assert.Equal(t, 1, g.CurrentRound)
	require.NotNil(t, g.FinishedAt)

	for _, action := range allActions {
		err := geoquiz.Transition(g, roundIn(geoquiz.RoundStatusPending), action, false, now)
		assert.ErrorIs(t, err, geoquiz.ErrInvalidState)
	}
}

func TestCompleteTwiceDoesNotAdvanceTwice(t *testing.T) {
	g := playingGame()
	r := roundIn(geoquiz.RoundStatusReveal)

	require.NoError(t, geoquiz.Transition(g, r, geoquiz.RoundComplete, true, now))
	err := geoquiz.Transition(g, r, geoquiz.RoundComplete, true, now)

	assert.ErrorIs(t, err, geoquiz.ErrInvalidState)
	assert.Equal(t, 2, g.CurrentRound)
}

func TestStartRequiresCurrentRound(t *testing.T) {
	g := playingGame()
	r := roundIn(geoquiz.RoundStatusPending)
	r.Number = 2

	err := geoquiz.Transition(g, r, geoquiz.RoundStart, true, now)
	assert.ErrorIs(t, err, geoquiz.ErrInvalidState)
	assert.Equal(t, geoquiz.RoundStatusPending, r.Status)
}

func TestTransitionRequiresPlayingGame(t *testing.T) {
	for _, status := range []geoquiz.GameStatus{geoquiz.GameStatusLobby, geoquiz.GameStatusPaused, geoquiz.GameStatusFinished} {
		t.Run(string(status), func(t *testing.T) {
			g := playingGame()
			g.Status = status
			r := roundIn(geoquiz.RoundStatusPending)

			err := geoquiz.Transition(g, r, geoquiz.RoundStart, true, now)
			assert.ErrorIs(t, err, geoquiz.ErrInvalidState)
			assert.Equal(t, geoquiz.RoundStatusPending, r.Status)
		})
	}
}

func TestUnknownRoundAction(t *testing.T) {
	err := geoquiz.Transition(playingGame(), roundIn(geoquiz.RoundStatusPending), "skip", true, now)
	assert.Equal(t, geoquiz.KindValidation, geoquiz.KindOf(err))
}
