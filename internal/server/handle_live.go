package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

// originPatterns allows the public host besides same-origin requests.
func originPatterns(publicURL string) []string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

// handleLiveFeed upgrades the moderator's connection to a websocket that
// mirrors every event of the game. Incoming messages are ignored.
func handleLiveFeed(broker *Broker, publicURL string) http.HandlerFunc {
	patterns := originPatterns(publicURL)
	return func(w http.ResponseWriter, r *http.Request) {
		logger := loggerFrom(r)
		g := gameFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: patterns,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe(g.ID)
		defer broker.Unsubscribe(g.ID, ch)

		// CloseRead handles control frames and cancels ctx when the
		// moderator disconnects.
		ctx := conn.CloseRead(r.Context())

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Debug("live feed closed", "game", g.ID)
				return
			case data := <-ch:
				wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := conn.Write(wctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}
