package server

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// LoginRequest is the request body for POST /api/moderator/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleModeratorLogin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeDomainError(w, r, geoquiz.Errorf(geoquiz.KindValidation, "email and password are required"))
			return
		}

		invalid := geoquiz.Errorf(geoquiz.KindUnauthenticated, "invalid credentials")
		m, hash, err := store.ModeratorByEmail(r.Context(), req.Email)
		if geoquiz.KindOf(err) == geoquiz.KindNotFound {
			writeDomainError(w, r, invalid)
			return
		}
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
			writeDomainError(w, r, invalid)
			return
		}

		sessionID, err := store.CreateModeratorSession(r.Context(), m.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     moderatorCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, m)
	}
}

func handleModeratorLogout(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(moderatorCookieName)
		if err == nil && cookie.Value != "" {
			if err := store.DeleteModeratorSession(r.Context(), cookie.Value); err != nil {
				loggerFrom(r).Warn("deleting moderator session", "error", err)
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     moderatorCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleModeratorMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, moderatorFrom(r))
	}
}
