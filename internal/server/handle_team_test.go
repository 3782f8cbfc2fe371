package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

func TestJoin(t *testing.T) {
	e := newTestEnv(t)
	cookies := e.login(testEmail, testPassword)
	created := e.createGame(cookies, CreateGameRequest{Name: "Lima Centro"})

	// Codes are case-insensitive.
	resp := e.join(strings.ToLower(created.JoinCode), "  Los   Incas ", "")
	if resp.Token == "" || resp.TeamID == "" {
		t.Fatal("expected team id and token")
	}
	if resp.TeamName != "Los Incas" || resp.GameName != "Lima Centro" || resp.Rejoined {
		t.Errorf("unexpected join response: %+v", resp)
	}

	w := e.do(http.MethodGet, "/api/game/state", nil, withToken(resp.Token))
	expectStatus(t, w, http.StatusOK)
	state := decodeJSON[GameStateResponse](t, w)
	if state.Game.Status != string(geoquiz.GameStatusLobby) || state.Round != nil {
		t.Errorf("unexpected lobby state: %+v", state)
	}
	if !state.Team.Active || state.Team.Score != 0 {
		t.Errorf("unexpected team: %+v", state.Team)
	}
}

func TestJoinRejected(t *testing.T) {
	e := newTestEnv(t)
	cookies := e.login(testEmail, testPassword)
	created := e.createGame(cookies, CreateGameRequest{Name: "Lima"})
	e.join(created.JoinCode, "Los Incas", "")

	tests := []struct {
		name   string
		req    JoinRequest
		status int
		kind   geoquiz.Kind
	}{
		{"malformed code", JoinRequest{JoinCode: "ABC", TeamName: "Condores"}, http.StatusBadRequest, geoquiz.KindValidation},
		{"unknown code", JoinRequest{JoinCode: "ZZZZZZ", TeamName: "Condores"}, http.StatusNotFound, geoquiz.KindNotFound},
		{"empty name", JoinRequest{JoinCode: created.JoinCode, TeamName: "   "}, http.StatusBadRequest, geoquiz.KindValidation},
		{"name taken", JoinRequest{JoinCode: created.JoinCode, TeamName: "los incas"}, http.StatusConflict, geoquiz.KindNameConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, e.do(http.MethodPost, "/api/join", tt.req), tt.status, tt.kind)
		})
	}
}

func TestJoinFinishedGame(t *testing.T) {
	e := newTestEnv(t)
	cookies := e.login(testEmail, testPassword)
	created := e.createGame(cookies, CreateGameRequest{Name: "Lima"})
	expectStatus(t, e.gameAction(cookies, created.GameID, "finish"), http.StatusOK)

	w := e.do(http.MethodPost, "/api/join", JoinRequest{JoinCode: created.JoinCode, TeamName: "Tarde"})
	expectError(t, w, http.StatusConflict, geoquiz.KindInvalidState)
}

func TestRejoinWithSession(t *testing.T) {
	e := newTestEnv(t)
	lg := e.startLiveGame()

	expectStatus(t, e.do(http.MethodPost, "/api/team/leave", nil, withToken(lg.teamA.Token)), http.StatusOK)

	// Joining mid-game with the same session returns the same team.
	again := e.join(lg.joinCode, "Los Incas del Sur", "session-a")
	if !again.Rejoined || again.TeamID != lg.teamA.TeamID || again.Token != lg.teamA.Token {
		t.Fatalf("expected rejoin of team %s, got %+v", lg.teamA.TeamID, again)
	}
	if again.TeamName != "Los Incas del Sur" {
		t.Errorf("expected renamed team, got %q", again.TeamName)
	}

	w := e.do(http.MethodGet, "/api/game/state", nil, withToken(again.Token))
	expectStatus(t, w, http.StatusOK)
	if state := decodeJSON[GameStateResponse](t, w); !state.Team.Active {
		t.Error("expected team active after rejoin")
	}

	// A rejoin cannot take another team's name.
	w = e.do(http.MethodPost, "/api/join", JoinRequest{JoinCode: lg.joinCode, TeamName: "las vicuñas", SessionID: "session-a"})
	expectError(t, w, http.StatusConflict, geoquiz.KindNameConflict)

	// A new session mid-game creates a new team.
	late := e.join(lg.joinCode, "Los Tardios", "session-c")
	if late.Rejoined || late.TeamID == lg.teamA.TeamID {
		t.Errorf("expected a new team, got %+v", late)
	}
}

func TestHeartbeatAndLeave(t *testing.T) {
	e := newTestEnv(t)
	cookies := e.login(testEmail, testPassword)
	created := e.createGame(cookies, CreateGameRequest{Name: "Lima"})
	team := e.join(created.JoinCode, "Los Incas", "")

	w := e.do(http.MethodPost, "/api/team/leave", nil, withToken(team.Token))
	expectStatus(t, w, http.StatusOK)
	if left := decodeJSON[TeamResponse](t, w); left.Active {
		t.Fatal("expected inactive team after leave")
	}

	e.clock.Advance(time.Minute)
	w = e.do(http.MethodPost, "/api/team/heartbeat", nil, withToken(team.Token))
	expectStatus(t, w, http.StatusOK)
	seen := decodeJSON[TeamResponse](t, w)
	if !seen.Active {
		t.Error("expected heartbeat to reactivate the team")
	}
	if !seen.LastSeenAt.After(seen.JoinedAt) {
		t.Errorf("expected last seen %v after joined %v", seen.LastSeenAt, seen.JoinedAt)
	}

	expectError(t, e.do(http.MethodPost, "/api/team/heartbeat", nil), http.StatusUnauthorized, geoquiz.KindUnauthenticated)
}

func TestDeleteTeam(t *testing.T) {
	e := newTestEnv(t)
	lg := e.startLiveGame()
	expectStatus(t, e.guess(lg.teamB.Token, lg.rounds[0].ID, geoquiz.GuessPayload{Position: &plazaMayor}), http.StatusCreated)

	path := "/api/games/" + lg.gameID + "/teams/" + lg.teamB.TeamID
	expectStatus(t, e.do(http.MethodDelete, path, nil, withCookies(lg.cookies)), http.StatusNoContent)

	// Its token no longer works and its guesses are gone.
	expectError(t, e.do(http.MethodGet, "/api/game/state", nil, withToken(lg.teamB.Token)), http.StatusUnauthorized, geoquiz.KindUnauthenticated)
	guesses, err := e.store.ListGuesses(t.Context(), lg.rounds[0].ID)
	if err != nil {
		t.Fatalf("list guesses: %v", err)
	}
	if len(guesses) != 0 {
		t.Fatalf("expected guesses removed, got %d", len(guesses))
	}

	expectError(t, e.do(http.MethodDelete, path, nil, withCookies(lg.cookies)), http.StatusNotFound, geoquiz.KindNotFound)
}

func TestErrorMessagesAreLocalized(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		lang string
		want string
	}{
		{"es-PE,es;q=0.9", "no autenticado"},
		{"en-US", "not authenticated"},
		{"", "not authenticated"},
		{"fr", "not authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			w := e.do(http.MethodGet, "/api/game/state", nil, withLanguage(tt.lang))
			expectStatus(t, w, http.StatusUnauthorized)
			resp := decodeJSON[ErrorResponse](t, w)
			if resp.Error != tt.want {
				t.Errorf("expected %q, got %q", tt.want, resp.Error)
			}
			if resp.Kind != geoquiz.KindUnauthenticated.String() {
				t.Errorf("expected kind unauthenticated, got %q", resp.Kind)
			}
		})
	}
}

func TestUnknownAPIPath(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSubmitGuessIsLogged(t *testing.T) {
	e := newTestEnv(t)
	lg := e.startLiveGame()

	var buf bytes.Buffer
	e.h = NewHandler(slog.New(slog.NewTextHandler(&buf, nil)), Deps{
		Store:     e.store,
		Broker:    e.broker,
		PublicURL: "https://quiz.playperu.com",
	}, nil)

	w := e.guess(lg.teamA.Token, lg.rounds[0].ID, geoquiz.GuessPayload{Position: north(plazaMayor, 40)})
	expectStatus(t, w, http.StatusCreated)
	resp := decodeJSON[GuessResponse](t, w)

	var line string
	for l := range strings.Lines(buf.String()) {
		if strings.Contains(l, `msg="guess submitted"`) {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("expected guess log line, got %q", buf.String())
	}
	for _, want := range []string{
		"game=" + lg.gameID,
		"round=" + lg.rounds[0].ID,
		"team=" + lg.teamA.TeamID,
		"guess=" + resp.GuessID,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	// Scores stay hidden until reveal.
	if strings.Contains(line, "score") || strings.Contains(line, "distance") {
		t.Errorf("guess log leaks scoring: %q", line)
	}
}
