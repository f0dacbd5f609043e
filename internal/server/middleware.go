package server

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/dashboard"
	"github.com/inkacorp/solicitudes/internal/session"
	"github.com/inkacorp/solicitudes/internal/store"
)

const (
	headerRequestID = "X-Request-ID"

	keyRequestID = "request_id"
	keyUser      = "user"
	keyToken     = "token"
)

// RequestID middleware generates a unique request ID for each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(headerRequestID, requestID)
		c.Set(keyRequestID, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()
	}
}

// GetRequestID gets the request ID from gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(keyRequestID)
}

// Recovery middleware recovers from panics and logs the error
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)
				log.Error().
					Interface("error", err).
					Str("request_id", requestID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Error interno del servidor",
					"title":      "Error",
					"request_id": requestID,
				})
			}
		}()

		c.Next()
	}
}

// RequestLogger logs incoming requests and their responses
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Str("request_id", GetRequestID(c))
		if query != "" {
			ev = ev.Str("query", query)
		}
		if user := GetUser(c); user.ID != "" {
			ev = ev.Str("user", user.ID)
		}
		ev.Msg("request completed")
	}
}

// Verifier resolves a bearer token to its user.
type Verifier interface {
	Verify(ctx context.Context, token string) (session.User, error)
}

// Auth rejects requests without a valid session and attaches the user token
// to the request context for the record store.
func Auth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortSessionExpired(c)
			return
		}
		token := strings.TrimSpace(parts[1])

		user, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("session check failed")
			}
			abortSessionExpired(c)
			return
		}

		c.Set(keyUser, user)
		c.Set(keyToken, token)
		c.Request = c.Request.WithContext(store.WithAccessToken(c.Request.Context(), token))
		c.Next()
	}
}

func abortSessionExpired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": dashboard.MsgSessionExpired,
		"title": dashboard.TitleSessionExpired,
	})
}

// GetUser returns the user set by Auth.
func GetUser(c *gin.Context) session.User {
	if v, ok := c.Get(keyUser); ok {
		if u, ok := v.(session.User); ok {
			return u
		}
	}
	return session.User{}
}

// CORS allows the browser back office to call the API.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition, X-Archive-URL")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Next()
	}
}
