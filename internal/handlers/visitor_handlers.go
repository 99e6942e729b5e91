package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/entrada-hq/entrada/internal/domain"
)

// ListVisitors handles GET /visitors
func (h *Handlers) ListVisitors(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	// ?id_card= is an exact-match lookup against the document number.
	if idCard := r.URL.Query().Get("id_card"); idCard != "" {
		visitor, err := h.directoryService.FindVisitorByIDCard(r.Context(), idCard)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []domain.Visitor{*visitor})
		return
	}

	visitors, err := h.directoryService.ListVisitors(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if visitors == nil {
		visitors = []domain.Visitor{}
	}
	writeJSON(w, http.StatusOK, visitors)
}

// GetVisitor handles GET /visitors/{id}
func (h *Handlers) GetVisitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid visitor ID", codeInvalidInput)
		return
	}

	visitor, err := h.directoryService.GetVisitor(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, visitor)
}

// UpdateVisitor handles PATCH /visitors/{id}. Only contact fields may change;
// identity fields are immutable once registered.
func (h *Handlers) UpdateVisitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid visitor ID", codeInvalidInput)
		return
	}

	var patch domain.VisitorPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	visitor, err := h.directoryService.UpdateVisitor(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, visitor)
}

// DeleteVisitor handles DELETE /visitors/{id} (administrators only)
func (h *Handlers) DeleteVisitor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid visitor ID", codeInvalidInput)
		return
	}

	if err := h.directoryService.DeleteVisitor(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
