package geoquiz

import (
	"strings"
	"time"
	"unicode/utf8"
)

// GameAction is a moderator command on the game-level status.
type GameAction string

const (
	GameStart  GameAction = "start"
	GamePause  GameAction = "pause"
	GameResume GameAction = "resume"
	GameFinish GameAction = "finish"
)

// GameCounts carries the facts Start needs from storage.
type GameCounts struct {
	Rounds      int
	ActiveTeams int
}

// Apply runs a game-level transition. Status only moves forward, except
// playing and paused which toggle. On error g is left unchanged.
func (g *Game) Apply(action GameAction, counts GameCounts, now time.Time) error {
	switch action {
	case GameStart:
		return g.start(counts, now)
	case GamePause:
		return g.move(GameStatusPlaying, GameStatusPaused)
	case GameResume:
		return g.move(GameStatusPaused, GameStatusPlaying)
	case GameFinish:
		return g.finish(now)
	}
	return Errorf(KindValidation, "unknown game action %q", action)
}

func (g *Game) start(counts GameCounts, now time.Time) error {
	if g.Status != GameStatusLobby {
		return Errorf(KindInvalidState, "game can only start from the lobby (status %s)", g.Status)
	}
	if counts.Rounds < 1 {
		return Errorf(KindInvalidState, "game has no rounds")
	}
	if counts.ActiveTeams < 1 {
		return Errorf(KindInvalidState, "game has no active teams")
	}
	g.Status = GameStatusPlaying
	g.CurrentRound = 1
	g.StartedAt = &now
	return nil
}

func (g *Game) move(from, to GameStatus) error {
	if g.Status != from {
		return Errorf(KindInvalidState, "game is %s, expected %s", g.Status, from)
	}
	g.Status = to
	return nil
}

func (g *Game) finish(now time.Time) error {
	if g.Status == GameStatusFinished {
		return Errorf(KindInvalidState, "game is already finished")
	}
	g.Status = GameStatusFinished
	g.FinishedAt = &now
	return nil
}

// CanImport reports whether locations and rounds may still be added.
func (g *Game) CanImport() error {
	if g.Status != GameStatusLobby {
		return Errorf(KindInvalidState, "locations can only be imported in the lobby")
	}
	return nil
}

// CanJoin reports whether teams may join or rejoin.
func (g *Game) CanJoin() error {
	if g.Status == GameStatusFinished {
		return Errorf(KindInvalidState, "game is finished")
	}
	return nil
}

const (
	maxGameNameLen = 100
	maxTeamNameLen = 40
)

// NormalizeGameName trims and validates a game name.
func NormalizeGameName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Errorf(KindValidation, "name is required")
	}
	if utf8.RuneCountInString(name) > maxGameNameLen {
		return "", Errorf(KindValidation, "name must be at most %d characters", maxGameNameLen)
	}
	return name, nil
}

// NormalizeTeamName trims, collapses inner whitespace and validates a team name.
func NormalizeTeamName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", Errorf(KindValidation, "teamName is required")
	}
	if utf8.RuneCountInString(name) > maxTeamNameLen {
		return "", Errorf(KindValidation, "teamName must be at most %d characters", maxTeamNameLen)
	}
	return name, nil
}

// NormalizeTimeLimit applies the default for zero and enforces bounds.
func NormalizeTimeLimit(seconds int) (int, error) {
	if seconds == 0 {
		return DefaultTimeLimit, nil
	}
	if seconds < MinTimeLimit || seconds > MaxTimeLimit {
		return 0, Errorf(KindValidation, "time limit must be between %d and %d seconds", MinTimeLimit, MaxTimeLimit)
	}
	return seconds, nil
}
