package server

import (
	"context"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// ErrNotFound is kept as an alias of the domain sentinel so handlers and
// stores share a single not-found kind.
var ErrNotFound = geoquiz.ErrNotFound

type Moderator struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewGame carries the moderator's createGame input after validation.
type NewGame struct {
	Name             string
	TimeLimitSeconds int
	TimeBonus        bool
}

type ImportResult struct {
	LocationCount int `json:"locationCount"`
	RoundCount    int `json:"roundCount"`
}

type JoinResult struct {
	Team     geoquiz.Team
	Game     geoquiz.Game
	Rejoined bool
}

// RoundChange is the state after a successful round transition.
type RoundChange struct {
	Game  geoquiz.Game
	Round geoquiz.Round
}

// Store is the persistence boundary. Every mutating method runs as a single
// transaction: it either fully applies or returns an error with no effect.
type Store interface {
	ModeratorByEmail(ctx context.Context, email string) (m Moderator, passwordHash string, err error)
	CreateModerator(ctx context.Context, email, passwordHash string) (Moderator, error)
	CreateModeratorSession(ctx context.Context, moderatorID string) (sessionID string, err error)
	DeleteModeratorSession(ctx context.Context, sessionID string) error
	ModeratorFromSession(ctx context.Context, sessionID string) (Moderator, error)

	CreateGame(ctx context.Context, moderatorID string, g NewGame) (geoquiz.Game, error)
	ListGames(ctx context.Context, moderatorID string) ([]geoquiz.Game, error)
	GetGame(ctx context.Context, gameID string) (geoquiz.Game, error)
	ImportLocations(ctx context.Context, gameID string, locs []geoquiz.Location, modes []geoquiz.Mode) (ImportResult, error)
	ApplyGameAction(ctx context.Context, gameID string, action geoquiz.GameAction) (geoquiz.Game, error)

	ListLocations(ctx context.Context, gameID string) ([]geoquiz.Location, error)
	GetLocation(ctx context.Context, locationID string) (geoquiz.Location, error)
	ListRounds(ctx context.Context, gameID string) ([]geoquiz.Round, error)
	GetRound(ctx context.Context, roundID string) (geoquiz.Round, error)
	TransitionRound(ctx context.Context, gameID, roundID string, action geoquiz.RoundAction) (RoundChange, error)

	JoinTeam(ctx context.Context, joinCode, name, sessionID string) (JoinResult, error)
	TeamFromToken(ctx context.Context, token string) (geoquiz.Team, error)
	ListTeams(ctx context.Context, gameID string) ([]geoquiz.Team, error)
	TouchTeam(ctx context.Context, teamID string) (geoquiz.Team, error)
	LeaveTeam(ctx context.Context, teamID string) (geoquiz.Team, error)
	DeleteTeam(ctx context.Context, gameID, teamID string) error

	SubmitGuess(ctx context.Context, teamID, roundID string, p geoquiz.GuessPayload) (guessID string, err error)
	ListGuesses(ctx context.Context, roundID string) ([]geoquiz.Guess, error)
	TeamGuess(ctx context.Context, roundID, teamID string) (geoquiz.Guess, error)
	Leaderboard(ctx context.Context, gameID string) ([]geoquiz.LeaderboardEntry, error)
}
