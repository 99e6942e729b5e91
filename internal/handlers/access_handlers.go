package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/entrada-hq/entrada/internal/domain"
)

// RegisterFullVisit handles POST /access/register_full_visit
func (h *Handlers) RegisterFullVisit(w http.ResponseWriter, r *http.Request) {
	actor := getActor(r)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", codeUnauthorized)
		return
	}

	var req domain.RegisterVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	view, err := h.visitService.RegisterFullVisit(r.Context(), actor, &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// CreateAccess handles POST /access for an existing visitor
func (h *Handlers) CreateAccess(w http.ResponseWriter, r *http.Request) {
	actor := getActor(r)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", codeUnauthorized)
		return
	}

	var req domain.CreateAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	view, err := h.visitService.CreateAccess(r.Context(), actor, &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// ListAccesses handles GET /access
func (h *Handlers) ListAccesses(w http.ResponseWriter, r *http.Request) {
	actor := getActor(r)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", codeUnauthorized)
		return
	}

	limit, offset := parsePagination(r)
	filters := domain.AccessFilters{
		IDCardSubstring: r.URL.Query().Get("id_card"),
		Limit:           limit,
		Offset:          offset,
	}

	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date parameter, expected YYYY-MM-DD", codeInvalidInput)
			return
		}
		filters.DateExact = &d
	}

	// The venue filter is honored for administrators only; the service pins
	// everyone else to their own venue.
	if raw := r.URL.Query().Get("venue_id"); raw != "" && actor.IsAdmin() {
		id, err := parseID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid venue_id parameter", codeInvalidInput)
			return
		}
		filters.VenueID = &id
	}

	views, err := h.visitService.ListAccesses(r.Context(), actor, filters)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if views == nil {
		views = []domain.AccessView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// GetAccess handles GET /access/{id}
func (h *Handlers) GetAccess(w http.ResponseWriter, r *http.Request) {
	actor := getActor(r)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", codeUnauthorized)
		return
	}

	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid access ID", codeInvalidInput)
		return
	}

	view, err := h.visitService.GetAccess(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateAccess handles PATCH /access/{id} (administrators only)
func (h *Handlers) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid access ID", codeInvalidInput)
		return
	}

	var patch domain.AccessPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	access, err := h.visitService.UpdateAccess(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, access)
}

// MarkVisitExit handles PATCH /access/{id}/exit
func (h *Handlers) MarkVisitExit(w http.ResponseWriter, r *http.Request) {
	actor := getActor(r)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", codeUnauthorized)
		return
	}

	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid access ID", codeInvalidInput)
		return
	}

	access, err := h.visitService.MarkVisitExit(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, access)
}

// DeleteAccess handles DELETE /access/{id} (administrators only)
func (h *Handlers) DeleteAccess(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid access ID", codeInvalidInput)
		return
	}

	if err := h.visitService.DeleteAccess(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
