package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/handlers"
	"github.com/entrada-hq/entrada/pkg/auth"
	"github.com/entrada-hq/entrada/pkg/config"
)

const testSecret = "test-secret"

// ---------- Mocks ----------

type mockAuthService struct {
	users map[int64]*domain.User
}

func (m *mockAuthService) Login(_ context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAuthService) Authorize(_ context.Context, claims *auth.Claims, allowed ...domain.Role) (*domain.User, error) {
	user, ok := m.users[claims.Sub]
	if !ok || !user.IsActive {
		return nil, domain.ErrForbidden
	}
	if user.IsAdmin() {
		return user, nil
	}
	if !user.Role.In(allowed...) {
		return nil, fmt.Errorf("%w: role %s not allowed", domain.ErrForbidden, user.Role)
	}
	return user, nil
}

type mockVisitService struct {
	registerFn func(ctx context.Context, actor *domain.User, req *domain.RegisterVisitRequest) (*domain.AccessView, error)
	getFn      func(ctx context.Context, actor *domain.User, id int64) (*domain.AccessView, error)
	exitFn     func(ctx context.Context, actor *domain.User, id int64) (*domain.Access, error)
	listFn     func(ctx context.Context, actor *domain.User, filters domain.AccessFilters) ([]domain.AccessView, error)
}

func (m *mockVisitService) RegisterFullVisit(ctx context.Context, actor *domain.User, req *domain.RegisterVisitRequest) (*domain.AccessView, error) {
	return m.registerFn(ctx, actor, req)
}

func (m *mockVisitService) CreateAccess(ctx context.Context, actor *domain.User, req *domain.CreateAccessRequest) (*domain.AccessView, error) {
	return nil, domain.ErrNotFound
}

func (m *mockVisitService) ListAccesses(ctx context.Context, actor *domain.User, filters domain.AccessFilters) ([]domain.AccessView, error) {
	return m.listFn(ctx, actor, filters)
}

func (m *mockVisitService) GetAccess(ctx context.Context, actor *domain.User, id int64) (*domain.AccessView, error) {
	return m.getFn(ctx, actor, id)
}

func (m *mockVisitService) UpdateAccess(ctx context.Context, id int64, patch domain.AccessPatch) (*domain.Access, error) {
	return nil, domain.ErrNotFound
}

func (m *mockVisitService) MarkVisitExit(ctx context.Context, actor *domain.User, id int64) (*domain.Access, error) {
	return m.exitFn(ctx, actor, id)
}

func (m *mockVisitService) DeleteAccess(ctx context.Context, id int64) error {
	return domain.ErrNotFound
}

// ---------- Fixture ----------

func venueRef(id int64) *int64 { return &id }

func testRouter(t *testing.T, visitSvc *mockVisitService, users ...*domain.User) http.Handler {
	t.Helper()

	authSvc := &mockAuthService{users: make(map[int64]*domain.User)}
	for _, u := range users {
		authSvc.users[u.ID] = u
	}

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: testSecret, AccessTokenTTL: time.Hour}}
	h := handlers.New(authSvc, visitSvc, nil, nil, nil, cfg)

	anyStaff := []domain.Role{
		domain.RoleReceptionist,
		domain.RoleVenueSupervisor,
		domain.RoleSystemAdministrator,
	}

	r := chi.NewRouter()
	r.Route("/v1/access", func(r chi.Router) {
		r.Use(h.RequireRoles(anyStaff...))
		r.Post("/register_full_visit", h.RegisterFullVisit)
		r.Get("/", h.ListAccesses)
		r.Get("/{id}", h.GetAccess)
		r.Patch("/{id}/exit", h.MarkVisitExit)
	})
	return r
}

func bearerFor(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := auth.NewAccessToken(u.ID, u.Email, string(u.Role), u.VenueID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error, body.Code
}

// ---------- Tests ----------

func TestAccessRoutesRequireToken(t *testing.T) {
	router := testRouter(t, &mockVisitService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/access/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "UNAUTHORIZED" {
		t.Errorf("code = %q", code)
	}
}

func TestAccessRoutesRejectGarbageToken(t *testing.T) {
	router := testRouter(t, &mockVisitService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/access/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "INVALID_TOKEN" {
		t.Errorf("code = %q", code)
	}
}

func TestAccessRoutesRejectStaleToken(t *testing.T) {
	// The token is valid but the account no longer resolves as active.
	gone := &domain.User{ID: 3, Email: "gone@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: false}
	router := testRouter(t, &mockVisitService{}, gone)

	req := httptest.NewRequest(http.MethodGet, "/v1/access/", nil)
	req.Header.Set("Authorization", bearerFor(t, gone))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "FORBIDDEN" {
		t.Errorf("code = %q", code)
	}
}

func TestRegisterFullVisitCreated(t *testing.T) {
	desk := &domain.User{ID: 1, Email: "desk@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: true}
	visitSvc := &mockVisitService{
		registerFn: func(_ context.Context, actor *domain.User, req *domain.RegisterVisitRequest) (*domain.AccessView, error) {
			if actor.ID != desk.ID {
				t.Errorf("actor = %d, want %d", actor.ID, desk.ID)
			}
			return &domain.AccessView{
				Access: domain.Access{
					ID:        5,
					VenueID:   req.VenueID,
					Status:    domain.AccessActive,
					EntryTime: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
				},
				VisitorName: req.Name,
			}, nil
		},
	}
	router := testRouter(t, visitSvc, desk)

	payload, _ := json.Marshal(domain.RegisterVisitRequest{
		Name: "Ada", LastName: "Lovelace", IDCardNumber: "X123456",
		IDCardTypeID: 1, VenueID: 1,
		VisitDate: "2026-03-14", EntryTime: "09:30", Reason: "vendor meeting",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/access/register_full_visit", bytes.NewReader(payload))
	req.Header.Set("Authorization", bearerFor(t, desk))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var view domain.AccessView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID != 5 || view.Status != domain.AccessActive || view.VisitorName != "Ada" {
		t.Errorf("view = %+v", view)
	}
}

func TestGetAccessNotFoundMasking(t *testing.T) {
	desk := &domain.User{ID: 1, Email: "desk@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: true}
	visitSvc := &mockVisitService{
		getFn: func(_ context.Context, _ *domain.User, _ int64) (*domain.AccessView, error) {
			return nil, domain.ErrNotFound
		},
	}
	router := testRouter(t, visitSvc, desk)

	req := httptest.NewRequest(http.MethodGet, "/v1/access/42", nil)
	req.Header.Set("Authorization", bearerFor(t, desk))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "NOT_FOUND" {
		t.Errorf("code = %q", code)
	}
}

func TestMarkVisitExitInvalidState(t *testing.T) {
	desk := &domain.User{ID: 1, Email: "desk@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: true}
	visitSvc := &mockVisitService{
		exitFn: func(_ context.Context, _ *domain.User, _ int64) (*domain.Access, error) {
			return nil, fmt.Errorf("%w: access is not active", domain.ErrInvalidState)
		},
	}
	router := testRouter(t, visitSvc, desk)

	req := httptest.NewRequest(http.MethodPatch, "/v1/access/5/exit", nil)
	req.Header.Set("Authorization", bearerFor(t, desk))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "INVALID_STATE" {
		t.Errorf("code = %q", code)
	}
}

func TestListAccessesQueryParams(t *testing.T) {
	admin := &domain.User{ID: 9, Email: "a@hq.test", Role: domain.RoleSystemAdministrator, IsActive: true}
	var got domain.AccessFilters
	visitSvc := &mockVisitService{
		listFn: func(_ context.Context, _ *domain.User, filters domain.AccessFilters) ([]domain.AccessView, error) {
			got = filters
			return nil, nil
		},
	}
	router := testRouter(t, visitSvc, admin)

	req := httptest.NewRequest(http.MethodGet, "/v1/access/?date=2026-03-14&id_card=X123&venue_id=2&limit=5", nil)
	req.Header.Set("Authorization", bearerFor(t, admin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got.DateExact == nil || got.DateExact.Format("2006-01-02") != "2026-03-14" {
		t.Errorf("date = %v", got.DateExact)
	}
	if got.IDCardSubstring != "X123" {
		t.Errorf("id_card = %q", got.IDCardSubstring)
	}
	if got.VenueID == nil || *got.VenueID != 2 {
		t.Errorf("venue_id = %v", got.VenueID)
	}
	if got.Limit != 5 {
		t.Errorf("limit = %d", got.Limit)
	}

	// The list body is an array even when empty.
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}

func TestListAccessesBadDate(t *testing.T) {
	desk := &domain.User{ID: 1, Email: "desk@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: true}
	router := testRouter(t, &mockVisitService{}, desk)

	req := httptest.NewRequest(http.MethodGet, "/v1/access/?date=14-03-2026", nil)
	req.Header.Set("Authorization", bearerFor(t, desk))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "INVALID_INPUT" {
		t.Errorf("code = %q", code)
	}
}
