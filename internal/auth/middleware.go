package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

const principalKey = "auth_principal"

// TokenCookieName is the session cookie carrying the identity token.
const TokenCookieName = "token"

// AuthMiddleware resolves identity tokens into principals.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. The token is taken
// from the Authorization bearer header or, failing that, the session cookie.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, ok := m.tokens.ResolveIdentity(rawToken(c))
	if !ok {
		return apperrors.NewUnauthenticated("not authenticated")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Resolve loads the principal when present without rejecting anonymous
// callers. Used by endpoints like /auth/me that report "no session" as data.
func (m *AuthMiddleware) Resolve(c *fiber.Ctx) error {
	if principal, ok := m.tokens.ResolveIdentity(rawToken(c)); ok {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func rawToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(TokenCookieName)
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
