package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleReceptionist        Role = "receptionist"
	RoleVenueSupervisor     Role = "venue_supervisor"
	RoleSystemAdministrator Role = "system_administrator"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleReceptionist, RoleVenueSupervisor, RoleSystemAdministrator:
		return Role(s), true
	default:
		return "", false
	}
}

// In returns whether r is a member of the given role set. An empty set admits
// any role.
func (r Role) In(allowed ...Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// User is a staff actor: a receptionist, venue supervisor or system
// administrator. Users are deactivated rather than deleted so access records
// keep a valid logged-by reference.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	VenueID      *int64    `json:"venue_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleSystemAdministrator
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	VenueID  *int64 `json:"venue_id,omitempty"`
}

func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.LastName = strings.TrimSpace(r.LastName)
}

func (r *CreateUserRequest) Validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return ErrInvalidInput
	}
	if len(r.Password) < 8 {
		return ErrInvalidInput
	}
	role, ok := ParseRole(r.Role)
	if !ok {
		return ErrInvalidInput
	}
	// Receptionists and venue supervisors always operate within one venue.
	if role != RoleSystemAdministrator && r.VenueID == nil {
		return ErrInvalidInput
	}
	return nil
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	LastName *string `json:"last_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	VenueID  *int64  `json:"venue_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      int64  `json:"user_id"`
	VenueID     *int64 `json:"venue_id,omitempty"`
	Role        string `json:"role"`
}
