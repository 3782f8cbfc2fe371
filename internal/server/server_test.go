package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/geoquiz/internal/database"
	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/geoquiz"
	"github.com/playperu/geoquiz/internal/migrations"
)

const (
	testEmail    = "moderator@playperu.com"
	testPassword = "changeme"
)

var (
	plazaMayor   = geo.LatLng{Lat: -12.0464, Lng: -77.0300}
	sanFrancisco = geo.LatLng{Lat: -12.0463, Lng: -77.0275}
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	t      *testing.T
	h      http.Handler
	store  *SQLiteStore
	broker *Broker
	clock  *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clock := &testClock{now: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)}
	store := NewSQLiteStore(db)
	store.now = clock.Now

	e := &testEnv{t: t, store: store, broker: NewBroker(), clock: clock}
	e.createModerator(testEmail, testPassword)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e.h = NewHandler(logger, Deps{
		Store:     store,
		Broker:    e.broker,
		PublicURL: "https://quiz.playperu.com",
	}, nil)
	return e
}

func (e *testEnv) createModerator(email, password string) {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		e.t.Fatalf("hash: %v", err)
	}
	if _, err := e.store.CreateModerator(context.Background(), email, string(hash)); err != nil {
		e.t.Fatalf("create moderator: %v", err)
	}
}

type reqOption func(*http.Request)

func withCookies(cookies []*http.Cookie) reqOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func withToken(token string) reqOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withLanguage(lang string) reqOption {
	return func(r *http.Request) { r.Header.Set("Accept-Language", lang) }
}

func (e *testEnv) do(method, path string, body any, opts ...reqOption) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, kind geoquiz.Kind) {
	t.Helper()
	expectStatus(t, w, status)
	resp := decodeJSON[ErrorResponse](t, w)
	if resp.Kind != kind.String() {
		t.Fatalf("expected kind %q, got %q (%s)", kind, resp.Kind, resp.Detail)
	}
}

func (e *testEnv) login(email, password string) []*http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/moderator/login", LoginRequest{Email: email, Password: password})
	expectStatus(e.t, w, http.StatusOK)
	return w.Result().Cookies()
}

func (e *testEnv) createGame(cookies []*http.Cookie, req CreateGameRequest) CreateGameResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/games", req, withCookies(cookies))
	expectStatus(e.t, w, http.StatusCreated)
	return decodeJSON[CreateGameResponse](e.t, w)
}

func (e *testEnv) importLocations(cookies []*http.Cookie, gameID string, req ImportLocationsRequest) ImportResult {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/games/"+gameID+"/locations", req, withCookies(cookies))
	expectStatus(e.t, w, http.StatusCreated)
	return decodeJSON[ImportResult](e.t, w)
}

func (e *testEnv) join(code, name, sessionID string) JoinResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/join", JoinRequest{JoinCode: code, TeamName: name, SessionID: sessionID})
	expectStatus(e.t, w, http.StatusOK)
	return decodeJSON[JoinResponse](e.t, w)
}

func (e *testEnv) gameDetail(cookies []*http.Cookie, gameID string) GameDetailResponse {
	e.t.Helper()
	w := e.do(http.MethodGet, "/api/games/"+gameID, nil, withCookies(cookies))
	expectStatus(e.t, w, http.StatusOK)
	return decodeJSON[GameDetailResponse](e.t, w)
}

func (e *testEnv) gameAction(cookies []*http.Cookie, gameID, action string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/games/"+gameID+"/"+action, nil, withCookies(cookies))
}

func (e *testEnv) roundAction(cookies []*http.Cookie, gameID, roundID, action string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/games/"+gameID+"/rounds/"+roundID+"/"+action, nil, withCookies(cookies))
}

func (e *testEnv) guess(token, roundID string, p geoquiz.GuessPayload) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/rounds/"+roundID+"/guess", p, withToken(token))
}

// liveGame is a started game with two teams whose first round is open for
// guesses.
type liveGame struct {
	cookies  []*http.Cookie
	gameID   string
	joinCode string
	rounds   []RoundResponse
	teamA    JoinResponse
	teamB    JoinResponse
}

func (e *testEnv) startLiveGame() liveGame {
	e.t.Helper()
	cookies := e.login(testEmail, testPassword)
	created := e.createGame(cookies, CreateGameRequest{Name: "Lima Centro", DefaultTimeLimitSeconds: 30})
	e.importLocations(cookies, created.GameID, ImportLocationsRequest{
		Locations: []LocationInput{
			{Name: "Plaza Mayor", Position: plazaMayor},
			{Name: "San Francisco", Position: sanFrancisco},
		},
		Modes: []geoquiz.Mode{geoquiz.ModeUTMToLocation},
	})

	lg := liveGame{
		cookies:  cookies,
		gameID:   created.GameID,
		joinCode: created.JoinCode,
		teamA:    e.join(created.JoinCode, "Los Incas", "session-a"),
		teamB:    e.join(created.JoinCode, "Las Vicuñas", "session-b"),
	}

	expectStatus(e.t, e.gameAction(cookies, lg.gameID, "start"), http.StatusOK)
	lg.rounds = e.gameDetail(cookies, lg.gameID).Rounds

	expectStatus(e.t, e.roundAction(cookies, lg.gameID, lg.rounds[0].ID, "start"), http.StatusOK)
	expectStatus(e.t, e.roundAction(cookies, lg.gameID, lg.rounds[0].ID, "countdown"), http.StatusOK)
	return lg
}

// north returns p moved meters due north.
func north(p geo.LatLng, meters float64) *geo.LatLng {
	q := geo.Destination(p, 0, meters)
	return &q
}
