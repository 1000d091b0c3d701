package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentpay-backend/internal/apperr"
)

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/properties", nil)

	WriteError(rec, req, apperr.Validation([]apperr.FieldError{{Field: "title", Message: "is required"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request data", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "title", body.Details[0].Field)
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)

	WriteError(rec, req, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestErrorOmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusMethodNotAllowed, "Method not allowed")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}
