package handlers

import (
	"net/http"

	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
	"rentpay-backend/pkg/utils"
)

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreateIntent handles POST /api/payments
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req models.CreatePaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	resp, err := h.service.CreateIntent(r.Context(), caller, &req)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}
