package server

import (
	"net/http"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

const (
	qrDefaultSize = 256
	qrMaxSize     = 1024
)

// joinURL is the link encoded in a game's QR code.
func joinURL(publicURL, joinCode string) string {
	return publicURL + "/join?code=" + url.QueryEscape(joinCode)
}

func handleJoinQR(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		size := qrDefaultSize
		if s := r.URL.Query().Get("size"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 64 || n > qrMaxSize {
				writeDomainError(w, r, geoquiz.Errorf(geoquiz.KindValidation, "size must be between 64 and %d", qrMaxSize))
				return
			}
			size = n
		}

		png, err := qrcode.Encode(joinURL(publicURL, gameFrom(r).JoinCode), qrcode.Medium, size)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
