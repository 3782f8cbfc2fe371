package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	store, broker, events := deps.Store, deps.Broker, deps.Events

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoQuiz API", "/openapi.json", "/docs"))

	// Moderator auth.
	r.Post("/api/moderator/login", handleModeratorLogin(store))
	r.Post("/api/moderator/logout", handleModeratorLogout(store))
	r.With(moderatorAuthMiddleware(store)).Get("/api/moderator/me", handleModeratorMe())

	// Moderator games. Everything under {gameID} passes the ownership guard.
	r.Route("/api/games", func(r chi.Router) {
		r.Use(moderatorAuthMiddleware(store))
		r.Post("/", handleCreateGame(store))
		r.Get("/", handleListGames(store))

		r.Route("/{gameID}", func(r chi.Router) {
			r.Use(gameModeratorMiddleware(store))
			r.Get("/", handleGetGame(store))
			r.Post("/locations", handleImportLocations(store))
			r.Post("/start", handleGameAction(store, events, geoquiz.GameStart))
			r.Post("/pause", handleGameAction(store, events, geoquiz.GamePause))
			r.Post("/resume", handleGameAction(store, events, geoquiz.GameResume))
			r.Post("/finish", handleGameAction(store, events, geoquiz.GameFinish))

			r.Post("/rounds/{roundID}/start", handleRoundAction(store, events, geoquiz.RoundStart))
			r.Post("/rounds/{roundID}/countdown", handleRoundAction(store, events, geoquiz.RoundCountdown))
			r.Post("/rounds/{roundID}/reveal", handleRoundAction(store, events, geoquiz.RoundReveal))
			r.Post("/rounds/{roundID}/complete", handleRoundAction(store, events, geoquiz.RoundComplete))
			r.Get("/rounds/{roundID}/results", handleModeratorRoundResults(store))

			r.Get("/leaderboard", handleModeratorLeaderboard(store))
			r.Delete("/teams/{teamID}", handleDeleteTeam(store, events))
			r.Get("/qr.png", handleJoinQR(deps.PublicURL))
		})
	})

	r.Route("/ws/games/{gameID}", func(r chi.Router) {
		r.Use(moderatorAuthMiddleware(store))
		r.Use(gameModeratorMiddleware(store))
		r.Get("/", handleLiveFeed(broker, deps.PublicURL))
	})

	// Team routes.
	r.Post("/api/join", handleJoin(store, events))
	r.Get("/api/game/events", handleEvents(store, broker))
	r.Group(func(r chi.Router) {
		r.Use(teamAuthMiddleware(store))
		r.Get("/api/game/state", handleGameState(store))
		r.Get("/api/game/leaderboard", handleTeamLeaderboard(store))
		r.Post("/api/rounds/{roundID}/guess", handleSubmitGuess(store, events))
		r.Get("/api/rounds/{roundID}/results", handleTeamRoundResults(store))
		r.Post("/api/team/heartbeat", handleHeartbeat(store))
		r.Post("/api/team/leave", handleLeave(store, events))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
