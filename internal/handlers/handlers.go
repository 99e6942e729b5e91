package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/service"
	"github.com/entrada-hq/entrada/pkg/auth"
	"github.com/entrada-hq/entrada/pkg/config"
	"github.com/entrada-hq/entrada/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ctxKey string

const (
	ctxActor  ctxKey = "actor"
	ctxClaims ctxKey = "claims"
)

type Handlers struct {
	authService      service.AuthService
	visitService     service.VisitService
	directoryService service.DirectoryService
	userService      service.UserService
	referenceService service.ReferenceService
	config           *config.Config
}

func New(
	authService service.AuthService,
	visitService service.VisitService,
	directoryService service.DirectoryService,
	userService service.UserService,
	referenceService service.ReferenceService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:      authService,
		visitService:     visitService,
		directoryService: directoryService,
		userService:      userService,
		referenceService: referenceService,
		config:           cfg,
	}
}

// RequireRoles authenticates the bearer token and authorizes the caller
// against the given role set before the handler runs. The resolved user is
// stashed in the request context; role and venue always come from the store,
// never from the token alone.
func (h *Handlers) RequireRoles(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", codeUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, "Token expired", codeExpiredToken)
					return
				}
				writeError(w, http.StatusUnauthorized, "Invalid token", codeInvalidToken)
				return
			}

			actor, err := h.authService.Authorize(r.Context(), claims, allowed...)
			if err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					writeError(w, http.StatusForbidden, "Insufficient permissions", codeForbidden)
					return
				}
				logger.ErrorContext(r.Context(), "Authorization failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Authorization failed", codeInternalError)
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, actor.ID)
			ctx = context.WithValue(ctx, ctxActor, actor)
			ctx = context.WithValue(ctx, ctxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getActor(r *http.Request) *domain.User {
	if actor, ok := r.Context().Value(ctxActor).(*domain.User); ok {
		return actor
	}
	return nil
}

// Error codes surfaced to clients
const (
	codeInvalidInput       = "INVALID_INPUT"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeUnauthorized       = "UNAUTHORIZED"
	codeForbidden          = "FORBIDDEN"
	codeNotFound           = "NOT_FOUND"
	codeConflict           = "CONFLICT"
	codeInvalidState       = "INVALID_STATE"
	codeExpiredToken       = "EXPIRED_TOKEN"
	codeInvalidToken       = "INVALID_TOKEN"
	codeInternalError      = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, errorResponse{Error: message, Code: code})
}

// writeDomainError maps the error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password", codeInvalidCredentials)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error(), codeForbidden)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", codeNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidInput)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "Already exists", codeConflict)
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidState)
	default:
		logger.ErrorContext(r.Context(), "Unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", codeInternalError)
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
