package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// handleEvents streams game events to a team over SSE. EventSource cannot
// set headers, so the team token comes in the query string.
func handleEvents(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeDomainError(w, r, geoquiz.Errorf(geoquiz.KindUnauthenticated, "token query parameter required"))
			return
		}

		team, err := store.TeamFromToken(r.Context(), token)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ch := broker.Subscribe(team.GameID)
		defer broker.Unsubscribe(team.GameID, ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: game\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
