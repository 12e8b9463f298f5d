package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rdioscaio/pane-a-tavola/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie the storefront admin presents back after
// logging in. Its value is the configured session token, not a per-user id.
const SessionCookieName = "pane_admin_session"

// AdminAuth guards admin-only endpoints. A missing configured token is a
// server misconfiguration (500), not an authorization failure; a missing or
// mismatched cookie is 401. Handlers behind this middleware never reach the
// database on a rejected request.
func AdminAuth(cfg config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminSessionToken == "" {
			logger.Error("Admin session token not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "Admin session not configured",
			})
			return
		}

		token := SessionToken(c.Request)
		if token == "" || token != cfg.AdminSessionToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "Not authorized",
			})
			return
		}

		c.Next()
	}
}

// SessionToken extracts the session cookie value from the raw Cookie header:
// split on ";", trim, match the fixed name, URL-decode the value.
func SessionToken(r *http.Request) string {
	header := r.Header.Get("Cookie")
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, SessionCookieName+"=") {
			continue
		}
		value := strings.TrimPrefix(part, SessionCookieName+"=")
		if decoded, err := url.QueryUnescape(value); err == nil {
			return decoded
		}
		return value
	}
	return ""
}
