package server

import (
	"log/slog"
	"net/http"

	"golang.org/x/text/language"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// ErrorResponse is returned for all error responses. Error is localized
// from Accept-Language; Detail carries the untranslated cause.
type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

var supportedLanguages = []language.Tag{language.English, language.Spanish}

var languageMatcher = language.NewMatcher(supportedLanguages)

var kindMessages = map[language.Tag]map[geoquiz.Kind]string{
	language.English: {
		geoquiz.KindUnknown:         "internal error",
		geoquiz.KindUnauthenticated: "not authenticated",
		geoquiz.KindUnauthorized:    "not allowed",
		geoquiz.KindNotFound:        "not found",
		geoquiz.KindInvalidState:    "not allowed in the current state",
		geoquiz.KindValidation:      "invalid input",
		geoquiz.KindDuplicateGuess:  "your team already answered this round",
		geoquiz.KindDeadlineExpired: "time is up for this round",
		geoquiz.KindNameConflict:    "that team name is already taken",
	},
	language.Spanish: {
		geoquiz.KindUnknown:         "error interno",
		geoquiz.KindUnauthenticated: "no autenticado",
		geoquiz.KindUnauthorized:    "no permitido",
		geoquiz.KindNotFound:        "no encontrado",
		geoquiz.KindInvalidState:    "no permitido en el estado actual",
		geoquiz.KindValidation:      "datos no válidos",
		geoquiz.KindDuplicateGuess:  "tu equipo ya respondió esta ronda",
		geoquiz.KindDeadlineExpired: "se acabó el tiempo de esta ronda",
		geoquiz.KindNameConflict:    "ese nombre de equipo ya está en uso",
	},
}

var kindStatus = map[geoquiz.Kind]int{
	geoquiz.KindUnauthenticated: http.StatusUnauthorized,
	geoquiz.KindUnauthorized:    http.StatusForbidden,
	geoquiz.KindNotFound:        http.StatusNotFound,
	geoquiz.KindInvalidState:    http.StatusConflict,
	geoquiz.KindValidation:      http.StatusBadRequest,
	geoquiz.KindDuplicateGuess:  http.StatusConflict,
	geoquiz.KindDeadlineExpired: http.StatusConflict,
	geoquiz.KindNameConflict:    http.StatusConflict,
}

func requestLanguage(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := languageMatcher.Match(tags...)
	return supportedLanguages[idx]
}

// writeDomainError maps err to its HTTP status and a localized message.
// Errors outside the domain taxonomy are logged and reported as 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := geoquiz.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		loggerFrom(r).Error("request failed", "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{
		Error: kindMessages[requestLanguage(r)][kind],
		Kind:  kind.String(),
	}
	if ok {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

func loggerFrom(r *http.Request) *slog.Logger {
	if l, ok := r.Context().Value(ctxKeyLogger).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
