package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/repository"
	"github.com/entrada-hq/entrada/pkg/auth"
	"github.com/entrada-hq/entrada/pkg/config"
)

type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	// Authorize re-resolves the acting user from the claims and checks the
	// role set. Administrators pass unconditionally; an empty set admits any
	// authenticated active user.
	Authorize(ctx context.Context, claims *auth.Claims, allowed ...domain.Role) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	config   *config.Config
}

func NewAuthService(userRepo repository.UserRepository, config *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		config:   config,
	}
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	// Unknown email, bad password and deactivated account are deliberately
	// indistinguishable to the caller.
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		string(user.Role),
		user.VenueID,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.config.Auth.AccessTokenTTL.Seconds()),
		UserID:      user.ID,
		VenueID:     user.VenueID,
		Role:        string(user.Role),
	}, nil
}

func (s *authService) Authorize(ctx context.Context, claims *auth.Claims, allowed ...domain.Role) (*domain.User, error) {
	// The token is only a revocable identity proof. Role and venue come from
	// the store so a deactivated account or a reassigned role takes effect
	// without waiting for the token to expire.
	user, err := s.userRepo.FindByID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrForbidden
	}

	if user.IsAdmin() {
		return user, nil
	}
	if !user.Role.In(allowed...) {
		return nil, fmt.Errorf("%w: requires one of %v, have %s", domain.ErrForbidden, allowed, user.Role)
	}
	return user, nil
}
