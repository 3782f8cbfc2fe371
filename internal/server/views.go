package server

import (
	"time"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

// JSON views of domain records. Domain types stay free of wire concerns.

type GameResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	JoinCode         string     `json:"joinCode"`
	Status           string     `json:"status"`
	CurrentRound     int        `json:"currentRound"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
	TimeBonus        bool       `json:"timeBonus"`
	CreatedAt        time.Time  `json:"createdAt"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	FinishedAt       *time.Time `json:"finishedAt,omitempty"`
}

func gameView(g geoquiz.Game) GameResponse {
	return GameResponse{
		ID:               g.ID,
		Name:             g.Name,
		JoinCode:         g.JoinCode,
		Status:           string(g.Status),
		CurrentRound:     g.CurrentRound,
		TimeLimitSeconds: g.TimeLimitSeconds,
		TimeBonus:        g.TimeBonus,
		CreatedAt:        g.CreatedAt,
		StartedAt:        g.StartedAt,
		FinishedAt:       g.FinishedAt,
	}
}

type RoundResponse struct {
	ID                string     `json:"id"`
	Number            int        `json:"number"`
	LocationID        string     `json:"locationId,omitempty"`
	Mode              string     `json:"mode"`
	Status            string     `json:"status"`
	TimeLimitSeconds  int        `json:"timeLimitSeconds"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	GuessingStartedAt *time.Time `json:"guessingStartedAt,omitempty"`
	RevealedAt        *time.Time `json:"revealedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func roundView(r geoquiz.Round) RoundResponse {
	return RoundResponse{
		ID:                r.ID,
		Number:            r.Number,
		LocationID:        r.LocationID,
		Mode:              string(r.Mode),
		Status:            string(r.Status),
		TimeLimitSeconds:  r.TimeLimitSeconds,
		Deadline:          r.Deadline,
		StartedAt:         r.StartedAt,
		GuessingStartedAt: r.GuessingStartedAt,
		RevealedAt:        r.RevealedAt,
		CompletedAt:       r.CompletedAt,
	}
}

type TeamResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Active     bool      `json:"active"`
	JoinedAt   time.Time `json:"joinedAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

func teamView(t geoquiz.Team) TeamResponse {
	return TeamResponse{
		ID:         t.ID,
		Name:       t.Name,
		Score:      t.Score,
		Active:     t.Active,
		JoinedAt:   t.JoinedAt,
		LastSeenAt: t.LastSeenAt,
	}
}

// LocationResponse is the moderator's full view including answers.
type LocationResponse struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Position      geo.LatLng  `json:"position"`
	Grid          geo.UTM     `json:"grid"`
	ImageURLs     []string    `json:"imageUrls"`
	Difficulty    string      `json:"difficulty,omitempty"`
	Category      string      `json:"category,omitempty"`
	OrderIndex    int         `json:"orderIndex"`
	Origin        *geo.LatLng `json:"origin,omitempty"`
	Choices       []string    `json:"choices,omitempty"`
	CorrectChoice *int        `json:"correctChoice,omitempty"`
}

func locationView(l geoquiz.Location) LocationResponse {
	return LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		Position:      l.Position,
		Grid:          l.Grid,
		ImageURLs:     nonNil(l.ImageURLs),
		Difficulty:    l.Difficulty,
		Category:      l.Category,
		OrderIndex:    l.OrderIndex,
		Origin:        l.Origin,
		Choices:       l.Choices,
		CorrectChoice: l.CorrectChoice,
	}
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
