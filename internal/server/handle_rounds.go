package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

// RoundResultsResponse is the post-reveal view of a round.
type RoundResultsResponse struct {
	Round   RoundResponse         `json:"round"`
	Target  TargetResponse        `json:"target"`
	Guesses []GuessResultResponse `json:"guesses"`
}

type roundActionResponse struct {
	Game  GameResponse  `json:"game"`
	Round RoundResponse `json:"round"`
}

type TargetResponse struct {
	Name          string      `json:"name"`
	Position      geo.LatLng  `json:"position"`
	Grid          geo.UTM     `json:"grid"`
	ImageURLs     []string    `json:"imageUrls"`
	Origin        *geo.LatLng `json:"origin,omitempty"`
	Choices       []string    `json:"choices,omitempty"`
	CorrectChoice *int        `json:"correctChoice,omitempty"`
}

type GuessResultResponse struct {
	GuessID        string      `json:"guessId"`
	TeamID         string      `json:"teamId"`
	TeamName       string      `json:"teamName"`
	Position       *geo.LatLng `json:"position,omitempty"`
	Option         *int        `json:"option,omitempty"`
	DistanceMeters *float64    `json:"distanceMeters,omitempty"`
	// Summary reads like "1.2 km SW": distance and compass direction from
	// the guess to the target.
	Summary        string `json:"summary,omitempty"`
	AccuracyScore  int    `json:"accuracyScore"`
	TimeBonus      int    `json:"timeBonus"`
	Score          int    `json:"score"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}

func handleRoundAction(store Store, events Publisher, action geoquiz.RoundAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		change, err := store.TransitionRound(r.Context(), g.ID, chi.URLParam(r, "roundID"), action)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		loggerFrom(r).Info("round transition", "game", g.ID, "round", change.Round.Number,
			"action", action, "status", change.Round.Status)

		events.Publish(r.Context(), Event{
			Type:        EventRoundStatus,
			GameID:      g.ID,
			Status:      string(change.Round.Status),
			RoundID:     change.Round.ID,
			RoundNumber: change.Round.Number,
		})
		if change.Game.Status != g.Status || change.Game.CurrentRound != g.CurrentRound {
			events.Publish(r.Context(), Event{
				Type:        EventGameStatus,
				GameID:      g.ID,
				Status:      string(change.Game.Status),
				RoundNumber: change.Game.CurrentRound,
			})
		}

		writeJSON(w, http.StatusOK, roundActionResponse{
			Game:  gameView(change.Game),
			Round: roundView(change.Round),
		})
	}
}

func handleModeratorRoundResults(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := store.GetRound(r.Context(), chi.URLParam(r, "roundID"))
		if err == nil && round.GameID != gameFrom(r).ID {
			err = geoquiz.Errorf(geoquiz.KindNotFound, "round not found")
		}
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeRoundResults(w, r, store, round)
	}
}

func handleTeamRoundResults(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := store.GetRound(r.Context(), chi.URLParam(r, "roundID"))
		if err == nil && round.GameID != teamFrom(r).GameID {
			err = geoquiz.Errorf(geoquiz.KindUnauthorized, "round belongs to another game")
		}
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeRoundResults(w, r, store, round)
	}
}

func writeRoundResults(w http.ResponseWriter, r *http.Request, store Store, round geoquiz.Round) {
	res, err := roundResults(r.Context(), store, round)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// roundResults builds the results view. Guesses stay hidden until the
// round has been revealed.
func roundResults(ctx context.Context, store Store, round geoquiz.Round) (RoundResultsResponse, error) {
	if !round.Status.Revealed() {
		return RoundResultsResponse{}, geoquiz.Errorf(geoquiz.KindInvalidState,
			"results for round %d are not revealed yet", round.Number)
	}

	loc, err := store.GetLocation(ctx, round.LocationID)
	if err != nil {
		return RoundResultsResponse{}, err
	}
	guesses, err := store.ListGuesses(ctx, round.ID)
	if err != nil {
		return RoundResultsResponse{}, err
	}
	teams, err := store.ListTeams(ctx, round.GameID)
	if err != nil {
		return RoundResultsResponse{}, err
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	out := RoundResultsResponse{
		Round: roundView(round),
		Target: TargetResponse{
			Name:          loc.Name,
			Position:      loc.Position,
			Grid:          loc.Grid,
			ImageURLs:     nonNil(loc.ImageURLs),
			Origin:        loc.Origin,
			Choices:       loc.Choices,
			CorrectChoice: loc.CorrectChoice,
		},
		Guesses: make([]GuessResultResponse, 0, len(guesses)),
	}
	for _, g := range guesses {
		gr := GuessResultResponse{
			GuessID:        g.ID,
			TeamID:         g.TeamID,
			TeamName:       names[g.TeamID],
			Position:       g.Position,
			Option:         g.Payload.Option,
			DistanceMeters: g.DistanceMeters,
			AccuracyScore:  g.AccuracyScore,
			TimeBonus:      g.TimeBonus,
			Score:          g.Score,
			ResponseTimeMs: g.ResponseTime.Milliseconds(),
		}
		switch {
		case g.Position == nil || g.DistanceMeters == nil:
		case *g.DistanceMeters < 1:
			gr.Summary = geo.FormatDistance(*g.DistanceMeters)
		default:
			gr.Summary = fmt.Sprintf("%s %s", geo.FormatDistance(*g.DistanceMeters),
				geo.Compass(geo.Bearing(*g.Position, loc.Position)))
		}
		out.Guesses = append(out.Guesses, gr)
	}
	return out, nil
}

func handleModeratorLeaderboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeLeaderboard(w, r, store, gameFrom(r).ID)
	}
}

func handleTeamLeaderboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeLeaderboard(w, r, store, teamFrom(r).GameID)
	}
}

func writeLeaderboard(w http.ResponseWriter, r *http.Request, store Store, gameID string) {
	entries, err := store.Leaderboard(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
