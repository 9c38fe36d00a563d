package server

import (
	"encoding/json"
	"io"
	"net/http"

	"codewords/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeFailure maps an engine failure to an HTTP status. Unexpected
// failures hide the cause from the client.
func writeFailure(w http.ResponseWriter, err error) {
	failure, ok := game.AsFailure(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	switch failure.Kind {
	case game.KindNotFound:
		writeError(w, http.StatusNotFound, failure.Reason)
	case game.KindUnauthorized:
		writeError(w, http.StatusForbidden, failure.Reason)
	case game.KindInvalidState:
		writeError(w, http.StatusConflict, failure.Reason)
	case game.KindInvalidInput:
		writeError(w, http.StatusUnprocessableEntity, failure.Reason)
	case game.KindConflict:
		writeError(w, http.StatusConflict, failure.Reason)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
