package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/session"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "storefront.request_id"
	requestKey      = "storefront.request"
)

// requestID propagates the caller's X-Request-ID or mints one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs every request in development. Otherwise only
// non-2xx responses and requests slower than a second are logged.
func requestLogger(logger core.Logger, devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		if !devMode && status < 400 && duration <= time.Second {
			return
		}
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
			"request_id":  c.GetString(requestIDKey),
		}
		if c.Request.URL.RawQuery != "" {
			fields["query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			core.LogError(ctx, logger, "HTTP request error", fields)
		case status >= 400:
			core.LogWarn(ctx, logger, "HTTP request client error", fields)
		case duration > time.Second:
			core.LogWarn(ctx, logger, "HTTP request slow", fields)
		default:
			core.LogInfo(ctx, logger, "HTTP request", fields)
		}
	}
}

// recovery turns a panic into a logged 500
func recovery(logger core.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		core.LogError(c.Request.Context(), logger, "Panic while serving request", map[string]interface{}{
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprint(recovered),
			"request_id": c.GetString(requestIDKey),
		})
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func defaultSecurityHeaders() map[string]string {
	return map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
}

// securityHeaders sets each header unless a handler already did
func securityHeaders(headers map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range headers {
			if h.Get(k) == "" {
				h.Set(k, v)
			}
		}
		c.Next()
	}
}

// sessionMiddleware resolves the session cookie, creating a session when
// there is none or it is gone, and saves the session once the handler is
// done if the handler did not already.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var sess *session.Session

		if id, err := c.Cookie(s.cfg.CookieName); err == nil && id != "" {
			sess, err = s.sessions.Get(ctx, id)
			if err != nil && !errors.Is(err, core.ErrSessionNotFound) && !errors.Is(err, core.ErrSessionExpired) {
				core.LogError(ctx, s.logger, "Session lookup failed", map[string]interface{}{"error": err.Error()})
			}
		}
		if sess == nil {
			created, err := s.sessions.Create(ctx)
			if err != nil {
				core.LogError(ctx, s.logger, "Session create failed", map[string]interface{}{"error": err.Error()})
				s.renderError(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
				c.Abort()
				return
			}
			sess = created
		}
		s.setSessionCookie(c, sess.ID)

		req := &request{c: c, s: s, sess: sess}
		c.Set(requestKey, req)
		c.Next()
		req.commit()
	}
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, id, int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.CookieSecure, true)
}
