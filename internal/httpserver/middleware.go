package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"orderdesk/internal/dashboard"
	"orderdesk/internal/logx"
)

const (
	sessionCookie = "orderdesk_session"
	workspaceKey  = "workspace"
	cookieMaxAge  = 365 * 24 * 60 * 60
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := logx.Info()
		if status >= http.StatusInternalServerError {
			evt = logx.Error()
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		evt.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("http request")
	}
}

// workspaceMiddleware resolves the browser session from its cookie, issuing
// a new id when the cookie is missing or malformed.
func workspaceMiddleware(registry *dashboard.Registry, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, cookieMaxAge, "/", "", secure, true)

		c.Set(workspaceKey, registry.Open(id))
		c.Next()
	}
}

func workspaceFrom(c *gin.Context) *dashboard.Workspace {
	return c.MustGet(workspaceKey).(*dashboard.Workspace)
}
