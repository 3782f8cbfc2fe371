package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

// JoinRequest is the request body for POST /api/join. SessionID is a
// client-held identity; joining again with it rejoins the same team.
type JoinRequest struct {
	JoinCode  string `json:"joinCode"`
	TeamName  string `json:"teamName"`
	SessionID string `json:"sessionId,omitempty"`
}

type JoinResponse struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	GameID   string `json:"gameId"`
	GameName string `json:"gameName"`
	Token    string `json:"token"`
	Rejoined bool   `json:"rejoined"`
}

// GameStateResponse is what a team sees: its own standing and the current
// round's prompt, never the answer.
type GameStateResponse struct {
	Game  TeamGameView   `json:"game"`
	Team  TeamResponse   `json:"team"`
	Round *TeamRoundView `json:"round,omitempty"`
}

type TeamGameView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	CurrentRound int    `json:"currentRound"`
	TotalRounds  int    `json:"totalRounds"`
}

type TeamRoundView struct {
	ID               string      `json:"id"`
	Number           int         `json:"number"`
	Mode             string      `json:"mode"`
	Status           string      `json:"status"`
	TimeLimitSeconds int         `json:"timeLimitSeconds"`
	Deadline         *time.Time  `json:"deadline,omitempty"`
	Prompt           RoundPrompt `json:"prompt"`
	Answered         bool        `json:"answered"`
}

// RoundPrompt holds what the mode shows a team before reveal.
type RoundPrompt struct {
	Name      string      `json:"name,omitempty"`
	ImageURLs []string    `json:"imageUrls,omitempty"`
	Grid      *geo.UTM    `json:"grid,omitempty"`
	Origin    *geo.LatLng `json:"origin,omitempty"`
	Choices   []string    `json:"choices,omitempty"`
}

func promptFor(mode geoquiz.Mode, loc geoquiz.Location) RoundPrompt {
	switch mode {
	case geoquiz.ModeImageToUTM:
		return RoundPrompt{ImageURLs: loc.ImageURLs}
	case geoquiz.ModeUTMToLocation:
		grid := loc.Grid
		return RoundPrompt{Grid: &grid}
	case geoquiz.ModeDirectionDistance:
		return RoundPrompt{Name: loc.Name, ImageURLs: loc.ImageURLs, Origin: loc.Origin}
	case geoquiz.ModeMultipleChoice:
		return RoundPrompt{ImageURLs: loc.ImageURLs, Choices: loc.Choices}
	}
	return RoundPrompt{}
}

type GuessResponse struct {
	GuessID string `json:"guessId"`
}

func handleJoin(store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}

		code := geoquiz.NormalizeJoinCode(req.JoinCode)
		if !geoquiz.ValidJoinCode(code) {
			writeDomainError(w, r, geoquiz.Errorf(geoquiz.KindValidation, "join code must be %d characters", geoquiz.JoinCodeLength))
			return
		}
		name, err := geoquiz.NormalizeTeamName(req.TeamName)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		res, err := store.JoinTeam(r.Context(), code, name, req.SessionID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		loggerFrom(r).Info("team joined", "game", res.Game.ID, "team", res.Team.ID, "rejoined", res.Rejoined)
		events.Publish(r.Context(), Event{
			Type:     EventTeamJoined,
			GameID:   res.Game.ID,
			TeamID:   res.Team.ID,
			TeamName: res.Team.Name,
		})

		writeJSON(w, http.StatusOK, JoinResponse{
			TeamID:   res.Team.ID,
			TeamName: res.Team.Name,
			GameID:   res.Game.ID,
			GameName: res.Game.Name,
			Token:    res.Team.Token,
			Rejoined: res.Rejoined,
		})
	}
}

func handleGameState(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)
		ctx := r.Context()

		g, err := store.GetGame(ctx, team.GameID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		rounds, err := store.ListRounds(ctx, g.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		resp := GameStateResponse{
			Game: TeamGameView{
				ID:           g.ID,
				Name:         g.Name,
				Status:       string(g.Status),
				CurrentRound: g.CurrentRound,
				TotalRounds:  len(rounds),
			},
			Team: teamView(team),
		}

		for _, rd := range rounds {
			if rd.Number != g.CurrentRound || rd.Status == geoquiz.RoundStatusPending {
				continue
			}
			loc, err := store.GetLocation(ctx, rd.LocationID)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			_, err = store.TeamGuess(ctx, rd.ID, team.ID)
			if err != nil && geoquiz.KindOf(err) != geoquiz.KindNotFound {
				writeDomainError(w, r, err)
				return
			}
			resp.Round = &TeamRoundView{
				ID:               rd.ID,
				Number:           rd.Number,
				Mode:             string(rd.Mode),
				Status:           string(rd.Status),
				TimeLimitSeconds: rd.TimeLimitSeconds,
				Deadline:         rd.Deadline,
				Prompt:           promptFor(rd.Mode, loc),
				Answered:         err == nil,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// handleSubmitGuess returns only the guess id; score and distance stay
// hidden until the moderator reveals the round.
func handleSubmitGuess(store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p geoquiz.GuessPayload
		if err := readJSON(w, r, &p); err != nil {
			writeDomainError(w, r, err)
			return
		}

		team := teamFrom(r)
		roundID := chi.URLParam(r, "roundID")
		guessID, err := store.SubmitGuess(r.Context(), team.ID, roundID, p)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		loggerFrom(r).Info("guess submitted", "game", team.GameID, "round", roundID, "team", team.ID, "guess", guessID)

		events.Publish(r.Context(), Event{
			Type:     EventGuessSubmitted,
			GameID:   team.GameID,
			RoundID:  roundID,
			TeamID:   team.ID,
			TeamName: team.Name,
		})
		writeJSON(w, http.StatusCreated, GuessResponse{GuessID: guessID})
	}
}

func handleHeartbeat(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.TouchTeam(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teamView(t))
	}
}

func handleLeave(store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.LeaveTeam(r.Context(), teamFrom(r).ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		events.Publish(r.Context(), Event{
			Type:     EventTeamLeft,
			GameID:   t.GameID,
			TeamID:   t.ID,
			TeamName: t.Name,
		})
		writeJSON(w, http.StatusOK, teamView(t))
	}
}

func handleDeleteTeam(store Store, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		teamID := chi.URLParam(r, "teamID")
		if err := store.DeleteTeam(r.Context(), g.ID, teamID); err != nil {
			writeDomainError(w, r, err)
			return
		}

		loggerFrom(r).Info("team removed", "game", g.ID, "team", teamID)
		events.Publish(r.Context(), Event{Type: EventTeamRemoved, GameID: g.ID, TeamID: teamID})
		w.WriteHeader(http.StatusNoContent)
	}
}
