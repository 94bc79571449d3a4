package handler

import (
	"net/http"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/middleware"
	"github.com/Rexomon/Finance-tracker/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RefreshTokenCookie is the cookie carrying the refresh token
const RefreshTokenCookie = "RefreshToken"

// CookieConfig controls how session cookies are issued
type CookieConfig struct {
	Domain string
	Secure bool
}

// AuthHandler handles registration and session HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	cookies     CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles new user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("User registered")

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user and issues session cookies
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, pair, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookies(c, pair)

	log.Info().Str("user_id", user.ID.String()).Msg("User logged in")

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Refresh rotates the session using the refresh token cookie
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return respondError(c, domain.ErrSessionInvalid)
	}

	user, pair, err := h.authService.Refresh(cookie.Value)
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookies(c, pair)

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout ends the session and clears the session cookies
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if err := h.authService.Logout(userID); err != nil {
		return respondError(c, err)
	}

	h.clearSessionCookies(c)

	log.Info().Str("user_id", userID.String()).Msg("User logged out")

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Profile returns the authenticated user's profile
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.authService.Profile(middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) setSessionCookies(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(h.sessionCookie(middleware.AccessTokenCookie, pair.AccessToken, service.AccessTokenTTL))
	c.SetCookie(h.sessionCookie(RefreshTokenCookie, pair.RefreshToken, service.RefreshTokenTTL))
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(h.sessionCookie(middleware.AccessTokenCookie, "", -time.Hour))
	c.SetCookie(h.sessionCookie(RefreshTokenCookie, "", -time.Hour))
}

func (h *AuthHandler) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
