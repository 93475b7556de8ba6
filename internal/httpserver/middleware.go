package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bakereserve-storefront/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	sessionKey      = "session"

	// SessionCookie carries the gateway session id.
	SessionCookie = "bakereserve_session"
)

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

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
			if len(c.Errors) > 0 {
				event = event.Err(c.Errors.Last().Err)
			}
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("request.complete")
	}
}

type sessionResolver interface {
	Resolve(ctx context.Context, id string) (*domain.Session, error)
}

// sessionID reads the session id from the cookie, falling back to a bearer header.
func sessionID(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func requireSession(sessions sessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Resolve(c.Request.Context(), sessionID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// requireAdmin must run after requireSession.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess == nil {
			respondError(c, domain.ErrUnauthenticated)
			return
		}
		if !sess.IsAdmin() {
			respondError(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*domain.Session)
	return sess
}
