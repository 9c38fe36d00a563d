package server

import (
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// handleJoinQR renders the join link for a code as a QR PNG, for showing
// on a shared screen.
func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	if code == "" {
		http.NotFound(w, r)
		return
	}
	joinURL := strings.TrimRight(s.cfg.JoinBaseURL, "/") + "/join/" + code
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
