package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/middleware"
	"rentpay-backend/internal/models"
)

const maxJSONBody = 64 << 10

// decodeJSON reads a JSON request body into dst. An empty body decodes to
// the zero value so validation reports the missing fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.InvalidRequest("Invalid request data")
	}
	return nil
}

func identity(r *http.Request) (*models.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	return id, nil
}
