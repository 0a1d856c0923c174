package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/devevent/internal/auth"
	"github.com/geocoder89/devevent/internal/observability"
	"github.com/gin-gonic/gin"
)

const (
	AdminCookieName = "admin-token"
	AdminLoginPath  = "/admin/login"
	AdminLogoutPath = "/admin/logout"
	adminPrefix     = "/admin"
)

type TokenVerifier interface {
	VerifyAdminToken(token string) (*auth.AdminClaims, error)
}

// AdminGate runs on every request. Paths under /admin (except login and
// logout) need a valid admin cookie, otherwise the client is sent to the login page.
// It only guards navigation; mutating handlers verify the token again.
func AdminGate(tokens TokenVerifier, prom *observability.Prom) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch path {
		case AdminLoginPath:
			prom.IncGate("login_page")
			c.Next()
			return
		case AdminLogoutPath:
			prom.IncGate("logout")
			c.Next()
			return
		}

		if !isAdminPath(path) {
			c.Next()
			return
		}

		raw, err := c.Cookie(AdminCookieName)
		if err != nil || raw == "" {
			redirectToLogin(c, prom)
			return
		}

		claims, err := tokens.VerifyAdminToken(raw)
		if err != nil || !claims.IsAdmin() {
			redirectToLogin(c, prom)
			return
		}

		prom.IncGate("allow")
		c.Set(CtxAdminRole, claims.Role)
		c.Next()
	}
}

func isAdminPath(path string) bool {
	return path == adminPrefix || strings.HasPrefix(path, adminPrefix+"/")
}

func redirectToLogin(c *gin.Context, prom *observability.Prom) {
	prom.IncGate("redirect")
	c.Redirect(http.StatusTemporaryRedirect, AdminLoginPath)
	c.Abort()
}

// AdminToken returns the caller's admin token: the admin cookie, or a Bearer
// Authorization header for API clients.
func AdminToken(c *gin.Context) string {
	if raw, err := c.Cookie(AdminCookieName); err == nil && raw != "" {
		return raw
	}

	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}

	return ""
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxAdminRole)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
