package middleware

import (
	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/shared/apperr"
)

const ctxKeyIdentity = "identity"

// Identity is the authenticated caller as seen by this service. Session and
// credential handling live upstream; we only consume the resolved result.
type Identity struct {
	ID    string
	Email string
	Role  string // customer|admin
}

func (i Identity) IsAdmin() bool { return i.Role == "admin" }

// Authenticator resolves the identity behind a request, if any.
type Authenticator interface {
	Resolve(c *gin.Context) (Identity, bool)
}

// Auth stores the resolved identity in the request context. It never rejects;
// RequireAuth and RequireAdmin do.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := a.Resolve(c); ok && id.ID != "" {
			c.Set(ctxKeyIdentity, id)
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			Fail(c, apperr.UnauthorizedErr("Authentication required."))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			Fail(c, apperr.UnauthorizedErr("Authentication required."))
			return
		}
		if !id.IsAdmin() {
			Fail(c, apperr.ForbiddenErr("Admin access required."))
			return
		}
		c.Next()
	}
}

// HeaderAuthenticator trusts identity headers set by an upstream gateway.
// Suitable behind a trusted proxy or in local development only.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Resolve(c *gin.Context) (Identity, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		return Identity{}, false
	}
	return Identity{
		ID:    id,
		Email: c.GetHeader("X-User-Email"),
		Role:  c.GetHeader("X-User-Role"),
	}, true
}
