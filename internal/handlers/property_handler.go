package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
	"rentpay-backend/pkg/utils"
)

// PropertyHandler serves /api/properties.
type PropertyHandler struct {
	service *services.PropertyService
}

func NewPropertyHandler(service *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// List handles GET /api/properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	result, err := h.service.List(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// Create handles POST /api/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req models.CreatePropertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	property, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, property)
}

// Update handles PUT /api/properties/{id} and PUT /api/properties?id=
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req models.UpdatePropertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	property, err := h.service.Update(r.Context(), caller, propertyID(r), &req)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, property)
}

// Delete handles DELETE /api/properties/{id} and DELETE /api/properties?id=
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), caller, propertyID(r)); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.NoContent(w)
}

// AssignTenant handles POST /api/properties/assign-tenant
func (h *PropertyHandler) AssignTenant(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var req models.AssignTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	tenancy, err := h.service.AssignTenant(r.Context(), caller, &req)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, tenancy)
}

// DeactivateTenancy handles POST /api/properties/tenancies/{id}/deactivate
func (h *PropertyHandler) DeactivateTenancy(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	tenancy, err := h.service.DeactivateTenancy(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, tenancy)
}

func propertyID(r *http.Request) string {
	if id := mux.Vars(r)["id"]; id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}
