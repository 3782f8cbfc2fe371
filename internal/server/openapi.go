package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// HealthResponse documents GET /healthz.
type HealthResponse map[string]struct {
	Status string `json:"status" enum:"ok,error"`
}

type gamePath struct {
	GameID string `path:"gameID"`
}

type roundPath struct {
	GameID  string `path:"gameID"`
	RoundID string `path:"roundID"`
}

type teamPath struct {
	GameID string `path:"gameID"`
	TeamID string `path:"teamID"`
}

type teamRoundPath struct {
	RoundID string `path:"roundID"`
}

type importLocationsInput struct {
	gamePath
	ImportLocationsRequest
}

type submitGuessInput struct {
	teamRoundPath
	geoquiz.GuessPayload
}

type qrInput struct {
	gamePath
	Size int `query:"size" minimum:"64" maximum:"1024"`
}

type eventsInput struct {
	Token string `query:"token" required:"true"`
}

type apiOperation struct {
	method, path string
	summary      string
	description  string
	tag          string
	req          any
	resps        []apiResponse
}

type apiResponse struct {
	status      int
	body        any
	contentType string
}

func respOK(body any) apiResponse { return apiResponse{status: http.StatusOK, body: body} }
func respCreated(body any) apiResponse { return apiResponse{status: http.StatusCreated, body: body} }
func respError(status int) apiResponse { return apiResponse{status: status, body: ErrorResponse{}} }
func respStream(contentType string) apiResponse {
	return apiResponse{status: http.StatusOK, contentType: contentType}
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoQuiz live geolocation quiz.")

	unauth := respError(http.StatusUnauthorized)
	forbidden := respError(http.StatusForbidden)
	notFound := respError(http.StatusNotFound)
	conflict := respError(http.StatusConflict)
	invalid := respError(http.StatusBadRequest)

	ops := []apiOperation{
		{http.MethodGet, "/healthz", "Health check", "Returns the health status of backend dependencies.", "system", nil,
			[]apiResponse{respOK(HealthResponse{}), {status: http.StatusServiceUnavailable, body: HealthResponse{}}}},

		{http.MethodPost, "/api/moderator/login", "Moderator login", "Authenticate with email and password. Sets the moderator_session cookie.", "moderator", LoginRequest{},
			[]apiResponse{respOK(Moderator{}), unauth, invalid}},
		{http.MethodPost, "/api/moderator/logout", "Moderator logout", "Clears the moderator session and cookie.", "moderator", nil,
			[]apiResponse{respOK(map[string]string{})}},
		{http.MethodGet, "/api/moderator/me", "Current moderator", "Returns the authenticated moderator.", "moderator", nil,
			[]apiResponse{respOK(Moderator{}), unauth}},

		{http.MethodPost, "/api/games", "Create game", "Creates a lobby game with a unique 6-character join code.", "games", CreateGameRequest{},
			[]apiResponse{respCreated(CreateGameResponse{}), invalid, unauth}},
		{http.MethodGet, "/api/games", "List games", "Returns the moderator's games, newest first.", "games", nil,
			[]apiResponse{respOK([]GameResponse{}), unauth}},
		{http.MethodGet, "/api/games/{gameID}", "Get game", "Returns a game with its rounds, teams and locations.", "games", gamePath{},
			[]apiResponse{respOK(GameDetailResponse{}), unauth, forbidden, notFound}},
		{http.MethodPost, "/api/games/{gameID}/locations", "Import locations", "Adds locations and one round per (location, mode) pair. Lobby only.", "games", importLocationsInput{},
			[]apiResponse{respCreated(ImportResult{}), invalid, conflict, forbidden, notFound}},
		{http.MethodGet, "/api/games/{gameID}/leaderboard", "Game leaderboard", "Standings from revealed rounds with competition ranks.", "games", gamePath{},
			[]apiResponse{respOK([]geoquiz.LeaderboardEntry{}), forbidden, notFound}},
		{http.MethodDelete, "/api/games/{gameID}/teams/{teamID}", "Remove team", "Deletes a team and its guesses.", "games", teamPath{},
			[]apiResponse{{status: http.StatusNoContent}, forbidden, notFound}},
		{http.MethodGet, "/api/games/{gameID}/qr.png", "Join QR code", "PNG QR code linking to the join page for this game.", "games", qrInput{},
			[]apiResponse{respStream("image/png"), invalid, forbidden, notFound}},
		{http.MethodGet, "/ws/games/{gameID}", "Live moderator feed", "Upgrades to a WebSocket that streams every event of the game as JSON.", "games", gamePath{},
			[]apiResponse{{status: http.StatusSwitchingProtocols, contentType: "text/plain"}, unauth, forbidden}},

		{http.MethodPost, "/api/join", "Join game", "Creates a team in the game with the join code, or rejoins it for a known sessionId.", "teams", JoinRequest{},
			[]apiResponse{respOK(JoinResponse{}), invalid, notFound, conflict}},
		{http.MethodGet, "/api/game/state", "Team game state", "Returns the game, the team and the current round prompt. Requires Bearer token.", "teams", nil,
			[]apiResponse{respOK(GameStateResponse{}), unauth}},
		{http.MethodGet, "/api/game/leaderboard", "Team leaderboard", "Leaderboard of the team's game. Requires Bearer token.", "teams", nil,
			[]apiResponse{respOK([]geoquiz.LeaderboardEntry{}), unauth}},
		{http.MethodGet, "/api/game/events", "SSE event stream", "Server-Sent Events for the team's game. Pass the token as query parameter.", "teams", eventsInput{},
			[]apiResponse{respStream("text/event-stream"), unauth}},
		{http.MethodPost, "/api/rounds/{roundID}/guess", "Submit guess", "Submits the team's single guess for a round in the guessing state. Returns only the guess id.", "teams", submitGuessInput{},
			[]apiResponse{respCreated(GuessResponse{}), invalid, unauth, forbidden, notFound, conflict}},
		{http.MethodGet, "/api/rounds/{roundID}/results", "Team round results", "Target and all guesses of a revealed round.", "teams", teamRoundPath{},
			[]apiResponse{respOK(RoundResultsResponse{}), unauth, forbidden, notFound, conflict}},
		{http.MethodPost, "/api/team/heartbeat", "Heartbeat", "Marks the team active and updates last seen.", "teams", nil,
			[]apiResponse{respOK(TeamResponse{}), unauth}},
		{http.MethodPost, "/api/team/leave", "Leave", "Marks the team inactive. Score and guesses are kept.", "teams", nil,
			[]apiResponse{respOK(TeamResponse{}), unauth}},
	}

	for _, action := range []geoquiz.GameAction{geoquiz.GameStart, geoquiz.GamePause, geoquiz.GameResume, geoquiz.GameFinish} {
		ops = append(ops, apiOperation{http.MethodPost, "/api/games/{gameID}/" + string(action),
			"Game " + string(action), "Moves the game to its next status.", "games", gamePath{},
			[]apiResponse{respOK(GameResponse{}), conflict, forbidden, notFound}})
	}
	for _, action := range []geoquiz.RoundAction{geoquiz.RoundStart, geoquiz.RoundCountdown, geoquiz.RoundReveal, geoquiz.RoundComplete} {
		ops = append(ops, apiOperation{http.MethodPost, "/api/games/{gameID}/rounds/{roundID}/" + string(action),
			"Round " + string(action), "Advances the round state machine. Fails with 409 outside the allowed state.", "rounds", roundPath{},
			[]apiResponse{respOK(roundActionResponse{}), conflict, forbidden, notFound}})
	}
	ops = append(ops, apiOperation{http.MethodGet, "/api/games/{gameID}/rounds/{roundID}/results", "Round results",
		"Target and all guesses of a revealed round.", "rounds", roundPath{},
		[]apiResponse{respOK(RoundResultsResponse{}), conflict, forbidden, notFound}})

	for _, o := range ops {
		oc, err := r.NewOperationContext(o.method, o.path)
		if err != nil {
			continue
		}
		oc.SetSummary(o.summary)
		oc.SetDescription(o.description)
		oc.SetTags(o.tag)
		if o.req != nil {
			oc.AddReqStructure(o.req)
		}
		for _, resp := range o.resps {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.contentType != "" {
				opts = append(opts, openapi.WithContentType(resp.contentType))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
