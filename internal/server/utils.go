package server

import (
	"encoding/json"
	"net/http"

	"oxforecast/internal/logger"
)

// respondWithError logs err (if any) and sends a JSON error body with code.
func (s *Server) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil {
		s.log.Error(msg, err, logger.Fields{"status": code})
	}
	respondWithJSON(w, code, map[string]string{"error": msg})
}

// respondWithJSON marshals payload, sets the content type and writes code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logger.Debug("Failed to write response", logger.Fields{"error": err.Error()})
	}
}
