package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/service"
	"github.com/entrada-hq/entrada/pkg/auth"
	"github.com/entrada-hq/entrada/pkg/config"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[int64]*domain.User
	findErr error
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[int64]*domain.User),
	}
	for _, u := range users {
		m.byEmail[u.Email] = u
		m.byID[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, req *domain.CreateUserRequest, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           int64(len(m.byID) + 1),
		Name:         req.Name,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.Role(req.Role),
		VenueID:      req.VenueID,
		IsActive:     true,
	}
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byEmail[email], nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byID[id], nil
}

func (m *mockUserRepo) Update(_ context.Context, id int64, patch domain.UpdateUserRequest) (*domain.User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) Deactivate(_ context.Context, id int64) (bool, error) {
	u, ok := m.byID[id]
	if !ok || !u.IsActive {
		return false, nil
	}
	u.IsActive = false
	return true, nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

// ---------- Helpers ----------

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: 30 * time.Minute,
		},
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

func venueRef(id int64) *int64 { return &id }

// ---------- Login ----------

func TestLoginSuccess(t *testing.T) {
	repo := newMockUserRepo(&domain.User{
		ID:           1,
		Email:        "desk@venue.test",
		PasswordHash: hashPassword(t, "correct horse"),
		Role:         domain.RoleReceptionist,
		VenueID:      venueRef(3),
		IsActive:     true,
	})
	svc := service.NewAuthService(repo, testConfig())

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "Desk@Venue.Test",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("empty access token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("token_type = %q", resp.TokenType)
	}
	if resp.UserID != 1 {
		t.Errorf("user_id = %d", resp.UserID)
	}
	if resp.VenueID == nil || *resp.VenueID != 3 {
		t.Errorf("venue_id = %v, want 3", resp.VenueID)
	}

	claims, err := auth.Parse(resp.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("Parse issued token: %v", err)
	}
	if claims.Sub != 1 || claims.Role != "receptionist" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMockUserRepo(
		&domain.User{
			ID:           1,
			Email:        "desk@venue.test",
			PasswordHash: hashPassword(t, "correct horse"),
			Role:         domain.RoleReceptionist,
			VenueID:      venueRef(3),
			IsActive:     true,
		},
		&domain.User{
			ID:           2,
			Email:        "gone@venue.test",
			PasswordHash: hashPassword(t, "correct horse"),
			Role:         domain.RoleReceptionist,
			VenueID:      venueRef(3),
			IsActive:     false,
		},
	)
	svc := service.NewAuthService(repo, testConfig())

	cases := []struct {
		name string
		req  domain.LoginRequest
	}{
		{"unknown email", domain.LoginRequest{Email: "nobody@venue.test", Password: "correct horse"}},
		{"wrong password", domain.LoginRequest{Email: "desk@venue.test", Password: "wrong"}},
		{"deactivated account", domain.LoginRequest{Email: "gone@venue.test", Password: "correct horse"}},
		{"empty password", domain.LoginRequest{Email: "desk@venue.test"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &tc.req)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

// ---------- Authorize ----------

func claimsFor(u *domain.User) *auth.Claims {
	return &auth.Claims{Sub: u.ID, Email: u.Email, Role: string(u.Role), VenueID: u.VenueID}
}

func TestAuthorizeRoleMembership(t *testing.T) {
	receptionist := &domain.User{ID: 1, Email: "r@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: true}
	svc := service.NewAuthService(newMockUserRepo(receptionist), testConfig())

	got, err := svc.Authorize(context.Background(), claimsFor(receptionist), domain.RoleReceptionist, domain.RoleVenueSupervisor)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("resolved user = %d", got.ID)
	}

	_, err = svc.Authorize(context.Background(), claimsFor(receptionist), domain.RoleVenueSupervisor)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestAuthorizeAdminBypassesRoleSet(t *testing.T) {
	admin := &domain.User{ID: 9, Email: "a@hq.test", Role: domain.RoleSystemAdministrator, IsActive: true}
	svc := service.NewAuthService(newMockUserRepo(admin), testConfig())

	got, err := svc.Authorize(context.Background(), claimsFor(admin), domain.RoleReceptionist)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !got.IsAdmin() {
		t.Error("expected admin")
	}
}

func TestAuthorizeEmptySetAdmitsAnyActiveUser(t *testing.T) {
	receptionist := &domain.User{ID: 1, Email: "r@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: true}
	svc := service.NewAuthService(newMockUserRepo(receptionist), testConfig())

	if _, err := svc.Authorize(context.Background(), claimsFor(receptionist)); err != nil {
		t.Fatalf("Authorize with empty set: %v", err)
	}
}

func TestAuthorizeRejectsStaleToken(t *testing.T) {
	// A valid token for a user that no longer resolves, or resolves
	// deactivated, must not pass.
	deactivated := &domain.User{ID: 2, Email: "gone@v.test", Role: domain.RoleReceptionist, VenueID: venueRef(1), IsActive: false}
	svc := service.NewAuthService(newMockUserRepo(deactivated), testConfig())

	_, err := svc.Authorize(context.Background(), claimsFor(deactivated), domain.RoleReceptionist)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("deactivated: err = %v, want ErrForbidden", err)
	}

	missing := &auth.Claims{Sub: 404, Email: "ghost@v.test", Role: "receptionist"}
	_, err = svc.Authorize(context.Background(), missing, domain.RoleReceptionist)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("missing user: err = %v, want ErrForbidden", err)
	}
}
