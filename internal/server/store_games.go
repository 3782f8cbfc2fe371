package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// maxJoinCodeAttempts bounds the retry loop on join code collisions. With
// 32^6 codes a collision is already rare.
const maxJoinCodeAttempts = 10

func (s *SQLiteStore) CreateGame(ctx context.Context, moderatorID string, req NewGame) (geoquiz.Game, error) {
	g := geoquiz.Game{
		ID:               newID(),
		Name:             req.Name,
		ModeratorID:      moderatorID,
		Status:           geoquiz.GameStatusLobby,
		TimeLimitSeconds: req.TimeLimitSeconds,
		TimeBonus:        req.TimeBonus,
		CreatedAt:        s.clock(),
	}

	for range maxJoinCodeAttempts {
		code, err := geoquiz.NewJoinCode()
		if err != nil {
			return geoquiz.Game{}, err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO games (id, name, join_code, moderator_id, status, current_round,
				time_limit_seconds, time_bonus, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)
		`, g.ID, g.Name, code, g.ModeratorID, string(g.Status),
			g.TimeLimitSeconds, boolInt(g.TimeBonus), formatTime(g.CreatedAt))
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return geoquiz.Game{}, fmt.Errorf("inserting game: %w", err)
		}
		g.JoinCode = code
		return g, nil
	}
	return geoquiz.Game{}, fmt.Errorf("no unique join code after %d attempts", maxJoinCodeAttempts)
}

func (s *SQLiteStore) ListGames(ctx context.Context, moderatorID string) ([]geoquiz.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE moderator_id = ?
		ORDER BY created_at DESC, id
	`, moderatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []geoquiz.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) GetGame(ctx context.Context, gameID string) (geoquiz.Game, error) {
	return getGame(ctx, s.db, gameID)
}

// ImportLocations appends locations and their rounds to a lobby game. Round
// numbers continue after any earlier import so they stay contiguous.
func (s *SQLiteStore) ImportLocations(ctx context.Context, gameID string, locs []geoquiz.Location, modes []geoquiz.Mode) (ImportResult, error) {
	var res ImportResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := getGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if err := g.CanImport(); err != nil {
			return err
		}

		var existingLocs, lastRound int
		err = tx.QueryRowContext(ctx, `
			SELECT (SELECT COUNT(*) FROM locations WHERE game_id = ?),
			       (SELECT COALESCE(MAX(round_number), 0) FROM rounds WHERE game_id = ?)
		`, gameID, gameID).Scan(&existingLocs, &lastRound)
		if err != nil {
			return err
		}

		prepared, err := geoquiz.PrepareImport(locs, modes, existingLocs)
		if err != nil {
			return err
		}
		for i := range prepared {
			prepared[i].ID = newID()
			prepared[i].GameID = gameID
			if err := insertLocation(ctx, tx, prepared[i]); err != nil {
				return fmt.Errorf("inserting location %q: %w", prepared[i].Name, err)
			}
		}

		rounds := geoquiz.PlanRounds(gameID, prepared, modes, lastRound+1, g.TimeLimitSeconds)
		for _, r := range rounds {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO rounds (id, game_id, location_id, round_number, mode, status, time_limit_seconds)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, newID(), r.GameID, r.LocationID, r.Number, string(r.Mode), string(r.Status), r.TimeLimitSeconds)
			if err != nil {
				return fmt.Errorf("inserting round %d: %w", r.Number, err)
			}
		}

		res = ImportResult{LocationCount: len(prepared), RoundCount: len(rounds)}
		return nil
	})
	return res, err
}

// ApplyGameAction runs a game-level transition. The UPDATE is guarded on
// the status read in the same transaction.
func (s *SQLiteStore) ApplyGameAction(ctx context.Context, gameID string, action geoquiz.GameAction) (geoquiz.Game, error) {
	var g geoquiz.Game
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		g, err = getGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		prev := g.Status

		var counts geoquiz.GameCounts
		if action == geoquiz.GameStart {
			err := tx.QueryRowContext(ctx, `
				SELECT (SELECT COUNT(*) FROM rounds WHERE game_id = ?),
				       (SELECT COUNT(*) FROM teams WHERE game_id = ? AND active = 1)
			`, gameID, gameID).Scan(&counts.Rounds, &counts.ActiveTeams)
			if err != nil {
				return err
			}
		}

		if err := g.Apply(action, counts, s.clock()); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE games SET status = ?, current_round = ?, started_at = ?, finished_at = ?
			WHERE id = ? AND status = ?
		`, string(g.Status), g.CurrentRound, nullTime(g.StartedAt), nullTime(g.FinishedAt), gameID, string(prev))
		if err != nil {
			return err
		}
		if ok, err := affectedOne(res); err != nil || !ok {
			return stateChanged(err)
		}
		return nil
	})
	return g, err
}

func (s *SQLiteStore) ListLocations(ctx context.Context, gameID string) ([]geoquiz.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE game_id = ? ORDER BY order_index`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locs := []geoquiz.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func (s *SQLiteStore) GetLocation(ctx context.Context, locationID string) (geoquiz.Location, error) {
	return getLocation(ctx, s.db, locationID)
}

func (s *SQLiteStore) ListRounds(ctx context.Context, gameID string) ([]geoquiz.Round, error) {
	return listRounds(ctx, s.db, gameID)
}

func (s *SQLiteStore) GetRound(ctx context.Context, roundID string) (geoquiz.Round, error) {
	return getRound(ctx, s.db, roundID)
}

// TransitionRound applies a moderator round command. Reveal credits the
// round's guess scores to team totals in the same transaction; complete
// advances or finishes the game.
func (s *SQLiteStore) TransitionRound(ctx context.Context, gameID, roundID string, action geoquiz.RoundAction) (RoundChange, error) {
	var change RoundChange
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := getGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		r, err := getRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		if r.GameID != gameID {
			return geoquiz.Errorf(geoquiz.KindNotFound, "round not found")
		}

		var hasNext bool
		if action == geoquiz.RoundComplete {
			err := tx.QueryRowContext(ctx, `
				SELECT EXISTS (SELECT 1 FROM rounds WHERE game_id = ? AND round_number = ?)
			`, gameID, r.Number+1).Scan(&hasNext)
			if err != nil {
				return err
			}
		}

		prevRound, prevGame, prevCurrent := r.Status, g.Status, g.CurrentRound
		if err := geoquiz.Transition(&g, &r, action, hasNext, s.clock()); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE rounds SET status = ?, deadline = ?, started_at = ?, guessing_started_at = ?,
				revealed_at = ?, completed_at = ?
			WHERE id = ? AND status = ?
		`, string(r.Status), nullTime(r.Deadline), nullTime(r.StartedAt), nullTime(r.GuessingStartedAt),
			nullTime(r.RevealedAt), nullTime(r.CompletedAt), r.ID, string(prevRound))
		if err != nil {
			return err
		}
		if ok, err := affectedOne(res); err != nil || !ok {
			return stateChanged(err)
		}

		if action == geoquiz.RoundReveal {
			_, err := tx.ExecContext(ctx, `
				UPDATE teams
				SET score = score + (SELECT g.score FROM guesses g WHERE g.round_id = ? AND g.team_id = teams.id)
				WHERE id IN (SELECT team_id FROM guesses WHERE round_id = ?)
			`, r.ID, r.ID)
			if err != nil {
				return fmt.Errorf("crediting scores: %w", err)
			}
		}

		if g.Status != prevGame || g.CurrentRound != prevCurrent {
			res, err := tx.ExecContext(ctx, `
				UPDATE games SET status = ?, current_round = ?, finished_at = ?
				WHERE id = ? AND status = ? AND current_round = ?
			`, string(g.Status), g.CurrentRound, nullTime(g.FinishedAt), g.ID, string(prevGame), prevCurrent)
			if err != nil {
				return err
			}
			if ok, err := affectedOne(res); err != nil || !ok {
				return stateChanged(err)
			}
		}

		change = RoundChange{Game: g, Round: r}
		return nil
	})
	return change, err
}

// stateChanged reports a guarded UPDATE that matched no row: another
// mutation moved the record first.
func stateChanged(err error) error {
	if err != nil {
		return err
	}
	return geoquiz.Errorf(geoquiz.KindInvalidState, "state changed concurrently")
}
