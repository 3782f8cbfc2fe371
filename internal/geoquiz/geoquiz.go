// Package geoquiz defines the core domain types, the game and round state
// machines, and the guess submission rules. It has no I/O; stores call
// into it inside their transactions.
package geoquiz

import (
	"time"

	"github.com/playperu/geoquiz/internal/geo"
)

type GameStatus string

const (
	GameStatusLobby    GameStatus = "lobby"
	GameStatusPlaying  GameStatus = "playing"
	GameStatusPaused   GameStatus = "paused"
	GameStatusFinished GameStatus = "finished"
)

type RoundStatus string

const (
	RoundStatusPending   RoundStatus = "pending"
	RoundStatusShowing   RoundStatus = "showing"
	RoundStatusGuessing  RoundStatus = "guessing"
	RoundStatusReveal    RoundStatus = "reveal"
	RoundStatusCompleted RoundStatus = "completed"
)

// Revealed reports whether guesses for the round may be shown and counted.
func (s RoundStatus) Revealed() bool {
	return s == RoundStatusReveal || s == RoundStatusCompleted
}

// Mode determines what a team is shown and what kind of guess it submits.
type Mode string

const (
	ModeImageToUTM        Mode = "imageToUtm"
	ModeUTMToLocation     Mode = "utmToLocation"
	ModeDirectionDistance Mode = "directionDistance"
	ModeMultipleChoice    Mode = "multipleChoice"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeImageToUTM, ModeUTMToLocation, ModeDirectionDistance, ModeMultipleChoice:
		return true
	}
	return false
}

const (
	DefaultTimeLimit = 30
	MinTimeLimit     = 5
	MaxTimeLimit     = 600
)

type Game struct {
	ID               string
	Name             string
	JoinCode         string
	ModeratorID      string
	Status           GameStatus
	CurrentRound     int
	TimeLimitSeconds int
	TimeBonus        bool
	CreatedAt        time.Time
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

// Location is a quiz target. Immutable once imported.
type Location struct {
	ID         string
	GameID     string
	Name       string
	Position   geo.LatLng
	Grid       geo.UTM
	ImageURLs  []string
	Difficulty string
	Category   string
	OrderIndex int

	// Origin anchors directionDistance guesses.
	Origin *geo.LatLng
	// Choices and CorrectChoice back multipleChoice rounds.
	Choices       []string
	CorrectChoice *int
}

type Round struct {
	ID                string
	GameID            string
	LocationID        string
	Number            int
	Mode              Mode
	Status            RoundStatus
	TimeLimitSeconds  int
	Deadline          *time.Time
	StartedAt         *time.Time
	GuessingStartedAt *time.Time
	RevealedAt        *time.Time
	CompletedAt       *time.Time
}

type Team struct {
	ID         string
	GameID     string
	Name       string
	SessionID  string
	Token      string
	Score      int
	Active     bool
	JoinedAt   time.Time
	LastSeenAt time.Time
}

// Guess is scored when submitted but only counted once its round is revealed.
type Guess struct {
	ID             string
	RoundID        string
	TeamID         string
	Payload        GuessPayload
	Position       *geo.LatLng
	DistanceMeters *float64
	AccuracyScore  int
	TimeBonus      int
	Score          int
	ResponseTime   time.Duration
	SubmittedAt    time.Time
}

// RoundScore is one team's contribution from a single revealed round.
type RoundScore struct {
	RoundNumber int `json:"roundNumber"`
	Score       int `json:"score"`
}

// LeaderboardEntry is derived on read from teams, rounds and guesses.
type LeaderboardEntry struct {
	TeamID   string       `json:"teamId"`
	TeamName string       `json:"teamName"`
	Score    int          `json:"score"`
	Rank     int          `json:"rank"`
	History  []RoundScore `json:"history"`
}
