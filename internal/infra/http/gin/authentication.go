package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"propertyhub/internal/infra/security"
)

const principalContextKey = "propertyhub.principal"

type principal struct {
	ID    string
	Email string
	Name  string
}

// TokenVerifier resolves a bearer token to the calling guest.
type TokenVerifier interface {
	Verify(token string) (security.Principal, error)
}

// AuthMiddleware attaches a principal when a valid bearer token is present.
// Requests without one continue anonymously; handlers decide what needs auth.
type AuthMiddleware struct {
	Verifier TokenVerifier
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Verifier == nil {
		c.Next()
		return
	}
	p, err := m.Verifier.Verify(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token verification failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, principal{ID: p.ID, Email: p.Email, Name: p.Name})
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requirePrincipal answers 401 when the request carries no verified guest.
func requirePrincipal(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
