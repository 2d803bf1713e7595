package auth

import (
	"context"
	"net/http"
	"strings"

	"mykitchen/internal/apperr"
	applog "mykitchen/internal/log"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// Access is the level a route demands from its caller.
type Access int

const (
	Public Access = iota
	Authenticated
	Admin
)

// Rule grants Access to Method on a gin route pattern such as
// "/api/recipes/:id".
type Rule struct {
	Method string
	Path   string
	Access Access
}

// Permissions is a declarative route table. Routes that are not listed are
// denied.
type Permissions map[string]Access

func NewPermissions(rules ...Rule) Permissions {
	p := make(Permissions, len(rules))
	for _, r := range rules {
		p[permissionKey(r.Method, r.Path)] = r.Access
	}
	return p
}

func permissionKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func (p Permissions) Lookup(method, path string) (Access, bool) {
	access, ok := p[permissionKey(method, path)]
	return access, ok
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*Claims, error)
}

// Middleware resolves the bearer token, if any, into claims on the gin
// context. It never rejects a request; Authorize does.
func Middleware(svc authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := svc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				applog.Error(c.Request.Context(), "token authentication failed", "error", err)
			}
			c.Next()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// Authorize enforces the permission table against the matched route.
func Authorize(permissions Permissions) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, ok := permissions.Lookup(c.Request.Method, c.FullPath())
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		if access == Public {
			c.Next()
			return
		}

		claims := MustGetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrUnauthenticated.Message})
			return
		}
		if access == Admin && !claims.Principal().IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(header[len("Bearer "):])
	return raw, raw != ""
}

// MustGetClaims returns the caller's claims or nil on anonymous requests.
func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// CurrentPrincipal returns the caller and whether the request is authenticated.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	claims := MustGetClaims(c)
	if claims == nil {
		return Principal{}, false
	}
	return claims.Principal(), true
}
