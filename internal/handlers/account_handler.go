package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/services"
	"rentpay-backend/pkg/utils"
)

// AccountHandler serves /api/stripe: saved cards, setup intents, history and receipts.
type AccountHandler struct {
	service *services.AccountService
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// PaymentMethods handles GET /api/stripe/payment-methods
func (h *AccountHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	resp, err := h.service.PaymentMethods(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// DetachPaymentMethod handles DELETE /api/stripe/payment-methods/{id}
func (h *AccountHandler) DetachPaymentMethod(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		utils.WriteError(w, r, apperr.InvalidRequest("Payment method ID required"))
		return
	}

	if err := h.service.DetachPaymentMethod(r.Context(), caller, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.NoContent(w)
}

// SetupIntent handles POST /api/stripe/setup-intent
func (h *AccountHandler) SetupIntent(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	resp, err := h.service.SetupIntent(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// PaymentHistory handles GET /api/stripe/payment-history
func (h *AccountHandler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	history, err := h.service.PaymentHistory(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, history)
}

// Receipt handles GET /api/stripe/payment-history/{id}/receipt
func (h *AccountHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	pdf, err := h.service.Receipt(r.Context(), caller, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"receipt-%s.pdf\"", id))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
