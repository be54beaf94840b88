package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/incident-service/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager. TTL defaults to one day, the fixed
// validity window for identity tokens.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 24 * 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the JWT payload: the principal's identity and role.
type Claims struct {
	PrincipalID int64       `json:"id"`
	Role        domain.Role `json:"role"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the principal.
func (tm *TokenManager) GenerateToken(p *domain.Principal) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &Claims{
		PrincipalID: p.ID,
		Role:        p.Role,
		Name:        p.Name,
		Email:       p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ResolveIdentity turns a raw token into a Principal. An empty, malformed,
// expired or tampered token resolves to absent; verification failure is not
// distinguished from having no session at all.
func (tm *TokenManager) ResolveIdentity(raw string) (*domain.Principal, bool) {
	if raw == "" {
		return nil, false
	}
	claims, err := tm.ParseToken(raw)
	if err != nil {
		return nil, false
	}
	if !claims.Role.Valid() {
		return nil, false
	}
	return &domain.Principal{
		ID:    claims.PrincipalID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}, true
}
