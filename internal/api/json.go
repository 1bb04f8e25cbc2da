package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// response is the envelope every endpoint answers with.
type response struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeSuccess(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, response{
		Status:    http.StatusOK,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		Success:   true,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
		Success:   false,
	})
}
