package server

import (
	"context"
	"database/sql"
	"errors"

	"github.com/playperu/geoquiz/internal/geoquiz"
	"github.com/playperu/geoquiz/internal/scoring"
)

// SubmitGuess admits at most one guess per team and round. Preconditions
// are checked in order: team bound to the round's game, round guessing,
// deadline not passed, no earlier guess, payload matching the mode. The
// unique index on (round_id, team_id) backs the duplicate check.
func (s *SQLiteStore) SubmitGuess(ctx context.Context, teamID, roundID string, p geoquiz.GuessPayload) (string, error) {
	var guessID string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := s.clock()

		team, err := getTeam(ctx, tx, teamID)
		if geoquiz.KindOf(err) == geoquiz.KindNotFound {
			return geoquiz.ErrUnauthenticated
		}
		if err != nil {
			return err
		}
		r, err := getRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		if r.GameID != team.GameID {
			return geoquiz.Errorf(geoquiz.KindUnauthorized, "team does not belong to this round's game")
		}
		g, err := getGame(ctx, tx, r.GameID)
		if err != nil {
			return err
		}

		if err := geoquiz.CheckGuessWindow(&g, &r, now); err != nil {
			return err
		}

		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM guesses WHERE round_id = ? AND team_id = ?)
		`, roundID, teamID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return geoquiz.ErrDuplicateGuess
		}

		if err := p.Validate(r.Mode); err != nil {
			return err
		}

		loc, err := getLocation(ctx, tx, r.LocationID)
		if err != nil {
			return err
		}
		guess, err := geoquiz.Evaluate(loc, &r, p, scoring.Config{TimeBonus: g.TimeBonus}, now)
		if err != nil {
			return err
		}
		guess.ID = newID()
		guess.TeamID = teamID

		if err := insertGuess(ctx, tx, guess); err != nil {
			if isUniqueViolation(err) {
				return geoquiz.ErrDuplicateGuess
			}
			return err
		}
		guessID = guess.ID
		return nil
	})
	return guessID, err
}

func (s *SQLiteStore) ListGuesses(ctx context.Context, roundID string) ([]geoquiz.Guess, error) {
	return listGuesses(ctx, s.db,
		`SELECT `+guessColumns+` FROM guesses WHERE round_id = ? ORDER BY submitted_at, id`, roundID)
}

func (s *SQLiteStore) TeamGuess(ctx context.Context, roundID, teamID string) (geoquiz.Guess, error) {
	g, err := scanGuess(s.db.QueryRowContext(ctx,
		`SELECT `+guessColumns+` FROM guesses WHERE round_id = ? AND team_id = ?`, roundID, teamID))
	if errors.Is(err, sql.ErrNoRows) {
		return g, geoquiz.Errorf(geoquiz.KindNotFound, "no guess for this round")
	}
	return g, err
}

// Leaderboard reads teams, rounds and guesses in one transaction so the
// standings are a consistent snapshot, then derives ranks on the fly.
func (s *SQLiteStore) Leaderboard(ctx context.Context, gameID string) ([]geoquiz.LeaderboardEntry, error) {
	var entries []geoquiz.LeaderboardEntry
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getGame(ctx, tx, gameID); err != nil {
			return err
		}
		teams, err := listTeams(ctx, tx, gameID)
		if err != nil {
			return err
		}
		rounds, err := listRounds(ctx, tx, gameID)
		if err != nil {
			return err
		}
		guesses, err := listGuesses(ctx, tx, `
			SELECT `+guessColumns+` FROM guesses
			WHERE round_id IN (SELECT id FROM rounds WHERE game_id = ?)
		`, gameID)
		if err != nil {
			return err
		}
		entries = geoquiz.BuildLeaderboard(teams, rounds, guesses)
		return nil
	})
	return entries, err
}
