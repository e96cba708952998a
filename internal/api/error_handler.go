package api

import (
	"encoding/json"
	"net/http"

	"github.com/cardstats/cardstats/internal/errors"
	"github.com/cardstats/cardstats/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr := errors.FromStore(err)

	// Log based on status code
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeError(w, appErr.Status, appErr.Code, appErr.Message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
