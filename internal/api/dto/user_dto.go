package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PrincipalResponse is the transport representation of an authenticated actor.
type PrincipalResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewPrincipalResponse maps a principal.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{ID: p.ID, Name: p.Name, Email: p.Email, Role: string(p.Role)}
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
