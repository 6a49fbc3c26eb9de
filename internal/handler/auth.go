package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/deppfellow/budgetbud/internal/lib/token"
	"github.com/deppfellow/budgetbud/internal/middleware"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/labstack/echo/v4"
)

// AuthResponse is returned by register, login and refresh. The same tokens
// are also set as cookies.
type AuthResponse struct {
	User             *model.User `json:"user"`
	AccessToken      string      `json:"access_token"`
	AccessExpiresAt  time.Time   `json:"access_expires_at"`
	RefreshToken     string      `json:"refresh_token"`
	RefreshExpiresAt time.Time   `json:"refresh_expires_at"`
}

type AuthHandler struct {
	Handler
	authService *service.AuthService
}

func NewAuthHandler(s *server.Server, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler:     NewHandler(s),
		authService: authService,
	}
}

func (h *AuthHandler) Register(c echo.Context, payload *model.RegisterPayload) (*AuthResponse, error) {
	user, pair, err := h.authService.Register(c.Request().Context(), payload)
	if err != nil {
		return nil, err
	}
	return h.respond(c, user, pair), nil
}

func (h *AuthHandler) Login(c echo.Context, payload *model.LoginPayload) (*AuthResponse, error) {
	user, pair, err := h.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return nil, err
	}
	return h.respond(c, user, pair), nil
}

// Refresh rotates the token pair. The refresh_token cookie takes precedence
// over the body.
func (h *AuthHandler) Refresh(c echo.Context, payload *model.RefreshPayload) (*AuthResponse, error) {
	raw := payload.RefreshToken
	if cookie, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && cookie.Value != "" {
		raw = cookie.Value
	}

	user, pair, err := h.authService.Refresh(c.Request().Context(), raw)
	if err != nil {
		return nil, err
	}
	return h.respond(c, user, pair), nil
}

func (h *AuthHandler) Logout(c echo.Context, payload *model.RefreshPayload) error {
	raw := payload.RefreshToken
	if cookie, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && cookie.Value != "" {
		raw = cookie.Value
	}

	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return err
	}
	clearAuthCookies(c, &h.server.Config.Auth)
	return nil
}

func (h *AuthHandler) Me(c echo.Context, _ *model.EmptyPayload) (*model.User, error) {
	return h.authService.Me(c.Request().Context(), userID(c))
}

func (h *AuthHandler) respond(c echo.Context, user *model.User, pair *token.Pair) *AuthResponse {
	setAuthCookies(c, &h.server.Config.Auth, pair)
	return &AuthResponse{
		User:             user,
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

func authCookie(cfg *config.AuthConfig, name, value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   !cfg.InsecureCookies,
		SameSite: http.SameSiteNoneMode,
	}
	// Browsers reject SameSite=None without Secure.
	if cfg.InsecureCookies {
		cookie.SameSite = http.SameSiteLaxMode
	}
	if expires.IsZero() {
		cookie.MaxAge = -1
	}
	return cookie
}

func setAuthCookies(c echo.Context, cfg *config.AuthConfig, pair *token.Pair) {
	c.SetCookie(authCookie(cfg, middleware.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt))
	c.SetCookie(authCookie(cfg, middleware.RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt))
}

func clearAuthCookies(c echo.Context, cfg *config.AuthConfig) {
	c.SetCookie(authCookie(cfg, middleware.AccessTokenCookie, "", time.Time{}))
	c.SetCookie(authCookie(cfg, middleware.RefreshTokenCookie, "", time.Time{}))
}
