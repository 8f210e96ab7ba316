// internal/handlers/qr.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JulianC775/Gubs/internal/game"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// JoinURL is the link a room QR code points at. Without a configured PublicURL the request's
// host is used.
func (s *GameServer) JoinURL(r *http.Request, roomCode string) string {
	base := strings.TrimRight(s.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return fmt.Sprintf("%s/join/%s", base, roomCode)
}

func (s *GameServer) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	g, ok := s.Store.GetByRoomCode(r.PathValue("code"))
	if !ok {
		s.writeError(w, fmt.Errorf("%w: room %q", game.ErrNotFound, r.PathValue("code")))
		return
	}
	g.Mu.Lock()
	code := g.RoomCode
	g.Mu.Unlock()

	png, err := qrcode.Encode(s.JoinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
