package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/entrada-hq/entrada/internal/domain"
)

// Token handles POST /auth/token
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", codeInvalidInput)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor := getActor(r)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", codeUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, actor)
}
