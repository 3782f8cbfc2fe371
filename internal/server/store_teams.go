package server

import (
	"context"
	"database/sql"
	"errors"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// JoinTeam creates a team in the game with joinCode. A non-empty sessionID
// that already belongs to a team in that game rejoins it instead: the team
// is renamed, reactivated and keeps its token.
func (s *SQLiteStore) JoinTeam(ctx context.Context, joinCode, name, sessionID string) (JoinResult, error) {
	var res JoinResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := gameByJoinCode(ctx, tx, joinCode)
		if err != nil {
			return err
		}
		if err := g.CanJoin(); err != nil {
			return err
		}
		now := s.clock()

		var existing geoquiz.Team
		found := false
		if sessionID != "" {
			existing, err = scanTeam(tx.QueryRowContext(ctx,
				`SELECT `+teamColumns+` FROM teams WHERE game_id = ? AND session_id = ?`, g.ID, sessionID))
			switch {
			case err == nil:
				found = true
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		var taken bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM teams WHERE game_id = ? AND name = ? COLLATE NOCASE AND id != ?)
		`, g.ID, name, existing.ID).Scan(&taken)
		if err != nil {
			return err
		}
		if taken {
			return geoquiz.ErrNameConflict
		}

		if found {
			t, err := scanTeam(tx.QueryRowContext(ctx, `
				UPDATE teams SET name = ?, active = 1, last_seen_at = ?
				WHERE id = ?
				RETURNING `+teamColumns,
				name, formatTime(now), existing.ID))
			if isUniqueViolation(err) {
				return geoquiz.ErrNameConflict
			}
			if err != nil {
				return err
			}
			res = JoinResult{Team: t, Game: g, Rejoined: true}
			return nil
		}

		var session sql.NullString
		if sessionID != "" {
			session = sql.NullString{String: sessionID, Valid: true}
		}
		t, err := scanTeam(tx.QueryRowContext(ctx, `
			INSERT INTO teams (id, game_id, name, session_id, token, score, active, joined_at, last_seen_at)
			VALUES (?, ?, ?, ?, ?, 0, 1, ?, ?)
			RETURNING `+teamColumns,
			newID(), g.ID, name, session, newToken(), formatTime(now), formatTime(now)))
		if isUniqueViolation(err) {
			return geoquiz.ErrNameConflict
		}
		if err != nil {
			return err
		}
		res = JoinResult{Team: t, Game: g}
		return nil
	})
	return res, err
}

func (s *SQLiteStore) TeamFromToken(ctx context.Context, token string) (geoquiz.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE token = ?`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return t, geoquiz.ErrUnauthenticated
	}
	return t, err
}

func (s *SQLiteStore) ListTeams(ctx context.Context, gameID string) ([]geoquiz.Team, error) {
	return listTeams(ctx, s.db, gameID)
}

// TouchTeam records a heartbeat and reactivates the team.
func (s *SQLiteStore) TouchTeam(ctx context.Context, teamID string) (geoquiz.Team, error) {
	return s.setPresence(ctx, teamID, true)
}

// LeaveTeam marks the team inactive. Its guesses and score are kept.
func (s *SQLiteStore) LeaveTeam(ctx context.Context, teamID string) (geoquiz.Team, error) {
	return s.setPresence(ctx, teamID, false)
}

func (s *SQLiteStore) setPresence(ctx context.Context, teamID string, active bool) (geoquiz.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `
		UPDATE teams SET active = ?, last_seen_at = ?
		WHERE id = ?
		RETURNING `+teamColumns,
		boolInt(active), formatTime(s.clock()), teamID))
	if errors.Is(err, sql.ErrNoRows) {
		return t, geoquiz.Errorf(geoquiz.KindNotFound, "team not found")
	}
	return t, err
}

// DeleteTeam removes a team and, through the foreign key cascade, its guesses.
func (s *SQLiteStore) DeleteTeam(ctx context.Context, gameID, teamID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ? AND game_id = ?`, teamID, gameID)
	if err != nil {
		return err
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return geoquiz.Errorf(geoquiz.KindNotFound, "team not found")
	}
	return nil
}
