package server

import (
	"net/http"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	Name                    string `json:"name"`
	DefaultTimeLimitSeconds int    `json:"defaultTimeLimitSeconds"`
	TimeBonus               bool   `json:"timeBonus"`
}

type CreateGameResponse struct {
	GameID   string `json:"gameId"`
	JoinCode string `json:"joinCode"`
}

type GameDetailResponse struct {
	Game      GameResponse       `json:"game"`
	Rounds    []RoundResponse    `json:"rounds"`
	Teams     []TeamResponse     `json:"teams"`
	Locations []LocationResponse `json:"locations"`
}

// LocationInput is one entry of a bulk import. Grid is derived from
// Position when omitted.
type LocationInput struct {
	Name          string      `json:"name"`
	Position      geo.LatLng  `json:"position"`
	Grid          *geo.UTM    `json:"grid,omitempty"`
	ImageURLs     []string    `json:"imageUrls,omitempty"`
	Difficulty    string      `json:"difficulty,omitempty"`
	Category      string      `json:"category,omitempty"`
	Origin        *geo.LatLng `json:"origin,omitempty"`
	Choices       []string    `json:"choices,omitempty"`
	CorrectChoice *int        `json:"correctChoice,omitempty"`
}

// ImportLocationsRequest is the request body for POST /api/games/{gameID}/locations.
type ImportLocationsRequest struct {
	Locations []LocationInput `json:"locations"`
	Modes     []geoquiz.Mode  `json:"modes"`
}

func (in LocationInput) location() geoquiz.Location {
	l := geoquiz.Location{
		Name:          in.Name,
		Position:      in.Position,
		ImageURLs:     in.ImageURLs,
		Difficulty:    in.Difficulty,
		Category:      in.Category,
		Origin:        in.Origin,
		Choices:       in.Choices,
		CorrectChoice: in.CorrectChoice,
	}
	if in.Grid != nil {
		l.Grid = *in.Grid
	}
	return l
}

func handleCreateGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}

		name, err := geoquiz.NormalizeGameName(req.Name)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		limit, err := geoquiz.NormalizeTimeLimit(req.DefaultTimeLimitSeconds)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		g, err := store.CreateGame(r.Context(), moderatorFrom(r).ID, NewGame{
			Name:             name,
			TimeLimitSeconds: limit,
			TimeBonus:        req.TimeBonus,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		loggerFrom(r).Info("game created", "game", g.ID, "join_code", g.JoinCode)
		writeJSON(w, http.StatusCreated, CreateGameResponse{GameID: g.ID, JoinCode: g.JoinCode})
	}
}

func handleListGames(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.ListGames(r.Context(), moderatorFrom(r).ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(games, gameView))
	}
}

func handleGetGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)

		rounds, err := store.ListRounds(r.Context(), g.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		teams, err := store.ListTeams(r.Context(), g.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		locs, err := store.ListLocations(r.Context(), g.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, GameDetailResponse{
			Game:      gameView(g),
			Rounds:    mapSlice(rounds, roundView),
			Teams:     mapSlice(teams, teamView),
			Locations: mapSlice(locs, locationView),
		})
	}
}

func handleImportLocations(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportLocationsRequest
		if err := readJSON(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}

		g := gameFrom(r)
		res, err := store.ImportLocations(r.Context(), g.ID, mapSlice(req.Locations, LocationInput.location), req.Modes)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		loggerFrom(r).Info("locations imported", "game", g.ID,
			"locations", res.LocationCount, "rounds", res.RoundCount)
		writeJSON(w, http.StatusCreated, res)
	}
}

func handleGameAction(store Store, events Publisher, action geoquiz.GameAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.ApplyGameAction(r.Context(), gameFrom(r).ID, action)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		loggerFrom(r).Info("game status changed", "game", g.ID, "action", action, "status", g.Status)
		events.Publish(r.Context(), Event{
			Type:        EventGameStatus,
			GameID:      g.ID,
			Status:      string(g.Status),
			RoundNumber: g.CurrentRound,
		})
		writeJSON(w, http.StatusOK, gameView(g))
	}
}
