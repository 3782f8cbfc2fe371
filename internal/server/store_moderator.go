package server

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

func (s *SQLiteStore) ModeratorByEmail(ctx context.Context, email string) (Moderator, string, error) {
	var m Moderator
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash FROM moderators WHERE email = ?
	`, strings.ToLower(email)).Scan(&m.ID, &m.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return m, "", ErrNotFound
	}
	return m, hash, err
}

func (s *SQLiteStore) CreateModerator(ctx context.Context, email, passwordHash string) (Moderator, error) {
	m := Moderator{ID: newID(), Email: strings.ToLower(email)}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderators (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, m.ID, m.Email, passwordHash, formatTime(s.clock()))
	if isUniqueViolation(err) {
		return Moderator{}, geoquiz.Errorf(geoquiz.KindValidation, "moderator %s already exists", m.Email)
	}
	return m, err
}

func (s *SQLiteStore) CreateModeratorSession(ctx context.Context, moderatorID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO moderator_sessions (id, moderator_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`, newToken(), moderatorID, formatTime(s.clock())).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) DeleteModeratorSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM moderator_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) ModeratorFromSession(ctx context.Context, sessionID string) (Moderator, error) {
	var m Moderator
	err := s.db.QueryRowContext(ctx, `
		SELECT m.id, m.email
		FROM moderator_sessions s
		JOIN moderators m ON m.id = s.moderator_id
		WHERE s.id = ?
	`, sessionID).Scan(&m.ID, &m.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return Moderator{}, geoquiz.ErrUnauthenticated
	}
	return m, err
}
