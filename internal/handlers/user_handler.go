package handlers

import (
	"net/http"

	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
	"rentpay-backend/pkg/utils"
)

// UserHandler serves the caller's own profile at /api/users.
type UserHandler struct {
	service *services.ProfileService
}

func NewUserHandler(service *services.ProfileService) *UserHandler {
	return &UserHandler{service: service}
}

// Get handles GET /api/users
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	profile, err := h.service.Get(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/users
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	profile, err := h.service.Update(r.Context(), caller, &req)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}
