package middleware

import (
	"strings"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// TokenAuthenticator verifies an access token and returns its user id.
type TokenAuthenticator interface {
	Authenticate(raw string) (uuid.UUID, error)
}

type AuthMiddleware struct {
	server *server.Server
	tokens TokenAuthenticator
}

func NewAuthMiddleware(s *server.Server, tokens TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		tokens: tokens,
	}
}

// accessToken reads the access_token cookie, falling back to an
// "Authorization: Bearer" header.
func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth rejects requests without a valid access token with 401 and
// otherwise stores the user id for handlers and logs.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		raw := accessToken(c)
		if raw == "" {
			GetLogger(c).Warn().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("missing access token")
			return errs.NewUnauthorizedError("Authentication credentials were not provided", false)
		}

		userID, err := auth.tokens.Authenticate(raw)
		if err != nil {
			GetLogger(c).Warn().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("invalid access token")
			return err
		}

		setUser(c, userID)

		GetLogger(c).Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}
