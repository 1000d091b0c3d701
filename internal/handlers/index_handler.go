package handlers

import (
	"net/http"

	"rentpay-backend/pkg/utils"
)

// Version is reported by the service index.
const Version = "1.0.0"

var endpoints = []string{
	"POST /api/payments",
	"POST /api/webhook",
	"GET /api/properties",
	"POST /api/properties",
	"PUT /api/properties/{id}",
	"DELETE /api/properties/{id}",
	"POST /api/properties/assign-tenant",
	"POST /api/properties/tenancies/{id}/deactivate",
	"GET /api/users",
	"PUT /api/users",
	"GET /api/stripe/payment-methods",
	"DELETE /api/stripe/payment-methods/{id}",
	"GET /api/stripe/payment-history",
	"GET /api/stripe/payment-history/{id}/receipt",
	"POST /api/stripe/setup-intent",
	"GET /api/notifications/ws",
}

// Index handles GET /
func Index(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Rent Payment API",
		"version":   Version,
		"endpoints": endpoints,
	})
}
