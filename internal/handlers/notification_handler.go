package handlers

import (
	"net/http"

	"rentpay-backend/internal/notify"
	"rentpay-backend/pkg/utils"
)

type NotificationHandler struct {
	hub *notify.Hub
}

func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

// Subscribe handles GET /api/notifications/ws
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	h.hub.ServeWS(w, r, caller.ID)
}
