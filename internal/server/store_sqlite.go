package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

// timeLayout is fixed width so stored timestamps sort lexically. The driver
// hands them back in RFC 3339 form with trailing zeros trimmed, so reads
// parse with time.RFC3339Nano.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) clock() time.Time {
	return s.now().UTC()
}

// inTx runs fn in a transaction and commits if it returns nil. The pool has
// one connection, so fn must only use tx.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func newID() string {
	return uuid.NewString()
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Games.

const gameColumns = `id, name, join_code, moderator_id, status, current_round,
	time_limit_seconds, time_bonus, created_at, started_at, finished_at`

func scanGame(sc scanner) (geoquiz.Game, error) {
	var (
		g                     geoquiz.Game
		timeBonus             int
		createdAt             string
		startedAt, finishedAt sql.NullString
	)
	err := sc.Scan(&g.ID, &g.Name, &g.JoinCode, &g.ModeratorID, &g.Status, &g.CurrentRound,
		&g.TimeLimitSeconds, &timeBonus, &createdAt, &startedAt, &finishedAt)
	if err != nil {
		return g, err
	}
	g.TimeBonus = timeBonus == 1
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return g, err
	}
	if g.StartedAt, err = parseNullTime(startedAt); err != nil {
		return g, err
	}
	g.FinishedAt, err = parseNullTime(finishedAt)
	return g, err
}

func getGame(ctx context.Context, q querier, gameID string) (geoquiz.Game, error) {
	g, err := scanGame(q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return g, geoquiz.Errorf(geoquiz.KindNotFound, "game not found")
	}
	return g, err
}

func gameByJoinCode(ctx context.Context, q querier, code string) (geoquiz.Game, error) {
	g, err := scanGame(q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE join_code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return g, geoquiz.Errorf(geoquiz.KindNotFound, "no game with join code %s", code)
	}
	return g, err
}

// Locations.

const locationColumns = `id, game_id, name, lat, lng, utm_zone, utm_hemisphere, easting, northing,
	image_urls, difficulty, category, order_index, origin_lat, origin_lng, choices, correct_choice`

func scanLocation(sc scanner) (geoquiz.Location, error) {
	var (
		l                    geoquiz.Location
		imageURLs, choices   string
		originLat, originLng sql.NullFloat64
		correct              sql.NullInt64
	)
	err := sc.Scan(&l.ID, &l.GameID, &l.Name, &l.Position.Lat, &l.Position.Lng,
		&l.Grid.Zone, &l.Grid.Hemisphere, &l.Grid.Easting, &l.Grid.Northing,
		&imageURLs, &l.Difficulty, &l.Category, &l.OrderIndex,
		&originLat, &originLng, &choices, &correct)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal([]byte(imageURLs), &l.ImageURLs); err != nil {
		return l, fmt.Errorf("decoding image urls: %w", err)
	}
	if err := json.Unmarshal([]byte(choices), &l.Choices); err != nil {
		return l, fmt.Errorf("decoding choices: %w", err)
	}
	if originLat.Valid && originLng.Valid {
		l.Origin = &geo.LatLng{Lat: originLat.Float64, Lng: originLng.Float64}
	}
	if correct.Valid {
		c := int(correct.Int64)
		l.CorrectChoice = &c
	}
	return l, nil
}

func getLocation(ctx context.Context, q querier, locationID string) (geoquiz.Location, error) {
	l, err := scanLocation(q.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = ?`, locationID))
	if errors.Is(err, sql.ErrNoRows) {
		return l, geoquiz.Errorf(geoquiz.KindNotFound, "location not found")
	}
	return l, err
}

func insertLocation(ctx context.Context, q querier, l geoquiz.Location) error {
	imageURLs, err := json.Marshal(nonNil(l.ImageURLs))
	if err != nil {
		return err
	}
	choices, err := json.Marshal(nonNil(l.Choices))
	if err != nil {
		return err
	}
	var originLat, originLng sql.NullFloat64
	if l.Origin != nil {
		originLat = sql.NullFloat64{Float64: l.Origin.Lat, Valid: true}
		originLng = sql.NullFloat64{Float64: l.Origin.Lng, Valid: true}
	}
	var correct sql.NullInt64
	if l.CorrectChoice != nil {
		correct = sql.NullInt64{Int64: int64(*l.CorrectChoice), Valid: true}
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO locations (`+locationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.GameID, l.Name, l.Position.Lat, l.Position.Lng,
		l.Grid.Zone, string(l.Grid.Hemisphere), l.Grid.Easting, l.Grid.Northing,
		string(imageURLs), l.Difficulty, l.Category, l.OrderIndex,
		originLat, originLng, string(choices), correct)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Rounds.

const roundColumns = `id, game_id, location_id, round_number, mode, status, time_limit_seconds,
	deadline, started_at, guessing_started_at, revealed_at, completed_at`

func scanRound(sc scanner) (geoquiz.Round, error) {
	var (
		r                                       geoquiz.Round
		deadline, started, guessing, rev, compl sql.NullString
	)
	err := sc.Scan(&r.ID, &r.GameID, &r.LocationID, &r.Number, &r.Mode, &r.Status, &r.TimeLimitSeconds,
		&deadline, &started, &guessing, &rev, &compl)
	if err != nil {
		return r, err
	}
	for _, f := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{deadline, &r.Deadline},
		{started, &r.StartedAt},
		{guessing, &r.GuessingStartedAt},
		{rev, &r.RevealedAt},
		{compl, &r.CompletedAt},
	} {
		if *f.dst, err = parseNullTime(f.src); err != nil {
			return r, err
		}
	}
	return r, nil
}

func getRound(ctx context.Context, q querier, roundID string) (geoquiz.Round, error) {
	r, err := scanRound(q.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE id = ?`, roundID))
	if errors.Is(err, sql.ErrNoRows) {
		return r, geoquiz.Errorf(geoquiz.KindNotFound, "round not found")
	}
	return r, err
}

func listRounds(ctx context.Context, q querier, gameID string) ([]geoquiz.Round, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE game_id = ? ORDER BY round_number`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := []geoquiz.Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// Teams.

const teamColumns = `id, game_id, name, session_id, token, score, active, joined_at, last_seen_at`

func scanTeam(sc scanner) (geoquiz.Team, error) {
	var (
		t                  geoquiz.Team
		sessionID          sql.NullString
		active             int
		joinedAt, lastSeen string
	)
	err := sc.Scan(&t.ID, &t.GameID, &t.Name, &sessionID, &t.Token, &t.Score, &active, &joinedAt, &lastSeen)
	if err != nil {
		return t, err
	}
	t.SessionID = sessionID.String
	t.Active = active == 1
	if t.JoinedAt, err = parseTime(joinedAt); err != nil {
		return t, err
	}
	t.LastSeenAt, err = parseTime(lastSeen)
	return t, err
}

func getTeam(ctx context.Context, q querier, teamID string) (geoquiz.Team, error) {
	t, err := scanTeam(q.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ?`, teamID))
	if errors.Is(err, sql.ErrNoRows) {
		return t, geoquiz.Errorf(geoquiz.KindNotFound, "team not found")
	}
	return t, err
}

func listTeams(ctx context.Context, q querier, gameID string) ([]geoquiz.Team, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE game_id = ? ORDER BY joined_at, id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []geoquiz.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Guesses.

const guessColumns = `id, round_id, team_id, payload, lat, lng, distance_meters,
	accuracy_score, time_bonus, score, response_ms, submitted_at`

func scanGuess(sc scanner) (geoquiz.Guess, error) {
	var (
		g           geoquiz.Guess
		payload     string
		lat, lng    sql.NullFloat64
		distance    sql.NullFloat64
		responseMS  int64
		submittedAt string
	)
	err := sc.Scan(&g.ID, &g.RoundID, &g.TeamID, &payload, &lat, &lng, &distance,
		&g.AccuracyScore, &g.TimeBonus, &g.Score, &responseMS, &submittedAt)
	if err != nil {
		return g, err
	}
	if err := json.Unmarshal([]byte(payload), &g.Payload); err != nil {
		return g, fmt.Errorf("decoding guess payload: %w", err)
	}
	if lat.Valid && lng.Valid {
		g.Position = &geo.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	if distance.Valid {
		d := distance.Float64
		g.DistanceMeters = &d
	}
	g.ResponseTime = time.Duration(responseMS) * time.Millisecond
	g.SubmittedAt, err = parseTime(submittedAt)
	return g, err
}

func insertGuess(ctx context.Context, q querier, g geoquiz.Guess) error {
	payload, err := json.Marshal(g.Payload)
	if err != nil {
		return err
	}
	var lat, lng, distance sql.NullFloat64
	if g.Position != nil {
		lat = sql.NullFloat64{Float64: g.Position.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: g.Position.Lng, Valid: true}
	}
	if g.DistanceMeters != nil {
		distance = sql.NullFloat64{Float64: *g.DistanceMeters, Valid: true}
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO guesses (`+guessColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.RoundID, g.TeamID, string(payload), lat, lng, distance,
		g.AccuracyScore, g.TimeBonus, g.Score, g.ResponseTime.Milliseconds(), formatTime(g.SubmittedAt))
	return err
}

func listGuesses(ctx context.Context, q querier, query string, arg string) ([]geoquiz.Guess, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guesses := []geoquiz.Guess{}
	for rows.Next() {
		g, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		guesses = append(guesses, g)
	}
	return guesses, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
