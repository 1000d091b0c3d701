package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/apperr"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// WriteError maps err through the error taxonomy. Internal causes are logged, never returned.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	status := apperr.Status(ae)
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	JSON(w, status, ErrorResponse{Error: ae.Message, Details: ae.Details})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
