package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentpay-backend/internal/handlers"
	"rentpay-backend/internal/health"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name   string
		db     error
		status int
	}{
		{"database up", nil, http.StatusOK},
		{"database down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(health.NewHealthChecker(pinger{tt.db}, nil))
			rec := httptest.NewRecorder()

			h.ReadinessHealth(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHealthHandler_Basic(t *testing.T) {
	h := handlers.NewHealthHandler(health.NewHealthChecker(pinger{}, nil))
	rec := httptest.NewRecorder()

	h.BasicHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestIndex(t *testing.T) {
	rec := httptest.NewRecorder()

	handlers.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message   string   `json:"message"`
		Version   string   `json:"version"`
		Endpoints []string `json:"endpoints"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "Rent Payment API", body.Message)
	assert.Equal(t, "1.0.0", body.Version)
	assert.Contains(t, body.Endpoints, "POST /api/payments")
}
