package server

import (
	"net/http"
	"strings"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

const moderatorCookieName = "moderator_session"

// teamFromRequest resolves the Bearer token to a team.
func teamFromRequest(r *http.Request, store Store) (geoquiz.Team, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return geoquiz.Team{}, geoquiz.ErrUnauthenticated
	}
	return store.TeamFromToken(r.Context(), token)
}

// moderatorFromRequest reads the moderator_session cookie and looks up the
// session.
func moderatorFromRequest(r *http.Request, store Store) (Moderator, error) {
	cookie, err := r.Cookie(moderatorCookieName)
	if err != nil || cookie.Value == "" {
		return Moderator{}, geoquiz.ErrUnauthenticated
	}
	return store.ModeratorFromSession(r.Context(), cookie.Value)
}
