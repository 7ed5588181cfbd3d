package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"receiver/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// NotFound is the router fallback for unknown paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
}

// MethodNotAllowed is the router fallback for known paths hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
}
