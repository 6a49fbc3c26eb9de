package middleware

import (
	"github.com/deppfellow/budgetbud/internal/logger"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	// UserIDKey holds the authenticated user id as a string, UserUUIDKey as a uuid.UUID.
	UserIDKey   = "user_id"
	UserUUIDKey = "user_uuid"

	// LoggerKey stores the request-scoped logger in the echo context.
	LoggerKey = "logger"
)

// ContextEnhancer builds a request-scoped logger carrying request_id,
// method, path, ip and the New Relic trace ids when a transaction exists.
//
// The logger is stored in the echo context and in the request context
// (zerolog.Ctx), so services that only see a context.Context log with the
// same fields.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			if userID := GetUserID(c); userID != "" {
				contextLogger = contextLogger.With().Str("user_id", userID).Logger()
			}

			storeLogger(c, contextLogger)
			return next(c)
		}
	}
}

func storeLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

// setUser records the authenticated user and adds user_id to the request logger.
func setUser(c echo.Context, id uuid.UUID) {
	c.Set(UserIDKey, id.String())
	c.Set(UserUUIDKey, id)

	l := GetLogger(c).With().Str("user_id", id.String()).Logger()
	storeLogger(c, l)
}

// GetUserID returns the authenticated user id, or "" outside RequireAuth.
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetUserUUID returns the authenticated user id, or uuid.Nil outside RequireAuth.
func GetUserUUID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(UserUUIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
