package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/entrada-hq/entrada/internal/domain"
)

// CreateVenue handles POST /venues (administrators only)
func (h *Handlers) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var venue domain.Venue
	if err := json.NewDecoder(r.Body).Decode(&venue); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	created, err := h.referenceService.CreateVenue(r.Context(), &venue)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetVenue handles GET /venues/{id}
func (h *Handlers) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", codeInvalidInput)
		return
	}

	venue, err := h.referenceService.GetVenue(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venue)
}

// UpdateVenue handles PATCH /venues/{id} (administrators only)
func (h *Handlers) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", codeInvalidInput)
		return
	}

	var patch domain.VenuePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	venue, err := h.referenceService.UpdateVenue(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, venue)
}

// ListVenues handles GET /venues
func (h *Handlers) ListVenues(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	venues, err := h.referenceService.ListVenues(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if venues == nil {
		venues = []domain.Venue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

// DeleteVenue handles DELETE /venues/{id} (administrators only)
func (h *Handlers) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid venue ID", codeInvalidInput)
		return
	}

	if err := h.referenceService.DeleteVenue(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateRole handles POST /roles (administrators only)
func (h *Handlers) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	role, err := h.referenceService.CreateRole(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

// ListRoles handles GET /roles
func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.referenceService.ListRoles(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if roles == nil {
		roles = []domain.RoleRecord{}
	}
	writeJSON(w, http.StatusOK, roles)
}

// DeleteRole handles DELETE /roles/{id} (administrators only)
func (h *Handlers) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role ID", codeInvalidInput)
		return
	}

	if err := h.referenceService.DeleteRole(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateIDCardType handles POST /id-card-types (administrators only)
func (h *Handlers) CreateIDCardType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	t, err := h.referenceService.CreateIDCardType(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// ListIDCardTypes handles GET /id-card-types
func (h *Handlers) ListIDCardTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.referenceService.ListIDCardTypes(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if types == nil {
		types = []domain.IDCardType{}
	}
	writeJSON(w, http.StatusOK, types)
}

// DeleteIDCardType handles DELETE /id-card-types/{id} (administrators only)
func (h *Handlers) DeleteIDCardType(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id card type ID", codeInvalidInput)
		return
	}

	if err := h.referenceService.DeleteIDCardType(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
