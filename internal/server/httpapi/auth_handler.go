package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/services"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves the authentication routes: registration, login, token
// refresh, logout and the confirmation-token workflows.
type AuthHandler struct {
	authService    *services.AuthService
	refreshService *services.RefreshTokenService
	usersService   *services.UsersService

	refreshCookieMaxAge int
}

// NewAuthHandler constructs an AuthHandler. refreshCookieMaxAge is the
// refresh-token TTL in seconds, used for the cookie lifetime.
func NewAuthHandler(
	authService *services.AuthService,
	refreshService *services.RefreshTokenService,
	usersService *services.UsersService,
	refreshCookieMaxAge int,
) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		refreshService:      refreshService,
		usersService:        usersService,
		refreshCookieMaxAge: refreshCookieMaxAge,
	}
}

// setRefreshCookie mirrors the refresh token into a hardened cookie so
// browser clients need not store it themselves.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, h.refreshCookieMaxAge, "/", "", true, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", true, true)
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	user, accessToken, refreshToken, err := h.authService.Register(c.Request.Context(), services.RegisterDTO{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.setRefreshCookie(c, refreshToken)
	c.JSON(http.StatusCreated, tokenResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Request.Context(), services.LoginDTO{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.setRefreshCookie(c, refreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// refreshTokenFrom reads the refresh token from the body, falling back to
// the cookie for browser clients.
func refreshTokenFrom(c *gin.Context) string {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		return cookie
	}
	return ""
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims := claimsFrom(c)
	userID, err := claims.UserID()
	if err != nil {
		writeError(c, err)
		return
	}

	refreshToken := refreshTokenFrom(c)
	if refreshToken == "" {
		writeError(c, common.NewAuthenticationError("auth.errors.invalid_refresh_token"))
		return
	}

	accessToken, err := h.refreshService.Refresh(c.Request.Context(), userID, refreshToken)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, accessTokenResponse{AccessToken: accessToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFrom(c)
	userID, err := claims.UserID()
	if err != nil {
		writeError(c, err)
		return
	}

	if token := refreshTokenFrom(c); token != "" {
		if err := h.refreshService.Invalidate(c.Request.Context(), userID, token); err != nil {
			writeError(c, err)
			return
		}
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	claims := claimsFrom(c)
	userID, err := claims.UserID()
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.refreshService.InvalidateAll(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// GET /api/auth/confirm-email?token=...
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		writeError(c, common.NewAuthenticationError("auth.errors.invalid_token"))
		return
	}

	if err := h.usersService.ConfirmEmail(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	if err := h.usersService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	if err := h.usersService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := claimsFrom(c)
	userID, err := claims.UserID()
	if err != nil {
		writeError(c, err)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	if err := h.usersService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// POST /api/auth/change-email
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	claims := claimsFrom(c)
	userID, err := claims.UserID()
	if err != nil {
		writeError(c, err)
		return
	}

	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	if err := h.usersService.RequestEmailChange(c.Request.Context(), userID, req.NewEmail); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// GET /api/auth/confirm-email-change?token=...
func (h *AuthHandler) ConfirmEmailChange(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		writeError(c, common.NewAuthenticationError("auth.errors.invalid_token"))
		return
	}

	if err := h.usersService.ConfirmEmailChange(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}
