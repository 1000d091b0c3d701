package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"rentpay-backend/internal/services"
	"rentpay-backend/pkg/utils"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	service *services.WebhookService
}

func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Handle handles POST /api/webhook. The body is read raw so the signature
// can be checked against the exact bytes the processor sent.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		webhookError(w, fmt.Errorf("could not read body: %w", err))
		return
	}

	err = h.service.Handle(r.Context(), body, r.Header.Get("Stripe-Signature"))
	var sigErr *services.SignatureError
	switch {
	case errors.As(err, &sigErr):
		webhookError(w, sigErr)
		return
	case err != nil:
		utils.WriteError(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]bool{"received": true})
}

func webhookError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Webhook Error: %s", err.Error())
}
