package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyModerator
	ctxKeyGame
	ctxKeyTeam
)

func loggerMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ctxKeyLogger, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func moderatorAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m, err := moderatorFromRequest(r, store)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyModerator, m)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// gameModeratorMiddleware is the single capability check for moderator
// game operations: it loads {gameID} and requires the session moderator
// to own it. Must run after moderatorAuthMiddleware.
func gameModeratorMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g, err := store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			if g.ModeratorID != moderatorFrom(r).ID {
				writeDomainError(w, r, geoquiz.Errorf(geoquiz.KindUnauthorized, "not the moderator of this game"))
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyGame, g)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func teamAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := teamFromRequest(r, store)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyTeam, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func moderatorFrom(r *http.Request) Moderator {
	return r.Context().Value(ctxKeyModerator).(Moderator)
}

func gameFrom(r *http.Request) geoquiz.Game {
	return r.Context().Value(ctxKeyGame).(geoquiz.Game)
}

func teamFrom(r *http.Request) geoquiz.Team {
	return r.Context().Value(ctxKeyTeam).(geoquiz.Team)
}
