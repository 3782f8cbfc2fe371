package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

const demoGameName = "Centro de Lima"

var demoOrigin = geo.LatLng{Lat: -12.0464, Lng: -77.0428}

func demoLocations() []geoquiz.Location {
	choices := []string{"Plaza Mayor", "Iglesia de San Francisco", "Jirón de la Unión", "Parque de la Muralla"}
	loc := func(i int, name string, lat, lng float64, category string) geoquiz.Location {
		correct := i
		origin := demoOrigin
		return geoquiz.Location{
			Name:          name,
			Position:      geo.LatLng{Lat: lat, Lng: lng},
			Difficulty:    "easy",
			Category:      category,
			Origin:        &origin,
			Choices:       choices,
			CorrectChoice: &correct,
		}
	}
	return []geoquiz.Location{
		loc(0, "Plaza Mayor", -12.0464, -77.0300, "plaza"),
		loc(1, "Iglesia de San Francisco", -12.0463, -77.0275, "church"),
		loc(2, "Jirón de la Unión", -12.0500, -77.0350, "street"),
		loc(3, "Parque de la Muralla", -12.0450, -77.0260, "park"),
	}
}

var demoModes = []geoquiz.Mode{geoquiz.ModeUTMToLocation, geoquiz.ModeMultipleChoice}

// SeedDemo ensures the configured moderator exists and owns a demo game in
// the lobby. Idempotent: does nothing once the moderator has any game.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store, email, password string) error {
	m, _, err := store.ModeratorByEmail(ctx, email)
	if errors.Is(err, geoquiz.ErrNotFound) {
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if herr != nil {
			return fmt.Errorf("hashing moderator password: %w", herr)
		}
		m, err = store.CreateModerator(ctx, email, string(hash))
		if err != nil {
			return fmt.Errorf("creating moderator: %w", err)
		}
		logger.Info("moderator created", "email", m.Email)
	} else if err != nil {
		return fmt.Errorf("loading moderator: %w", err)
	}

	games, err := store.ListGames(ctx, m.ID)
	if err != nil {
		return err
	}
	if len(games) > 0 {
		return nil
	}

	g, err := store.CreateGame(ctx, m.ID, NewGame{
		Name:             demoGameName,
		TimeLimitSeconds: geoquiz.DefaultTimeLimit,
		TimeBonus:        true,
	})
	if err != nil {
		return fmt.Errorf("creating demo game: %w", err)
	}
	res, err := store.ImportLocations(ctx, g.ID, demoLocations(), demoModes)
	if err != nil {
		return fmt.Errorf("importing demo locations: %w", err)
	}

	logger.Info("demo game seeded", "game", g.ID, "join_code", g.JoinCode, "rounds", res.RoundCount)
	return nil
}
