package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CookieConfig controls the auth cookies
type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	cookies     CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type loginResponse struct {
	User          *models.User        `json:"user"`
	Permissions   []models.Permission `json:"permissions"`
	AccessToken   string              `json:"accessToken"`
	AccessExpires time.Time           `json:"accessExpires"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Login(c.Request.Context(), &req, sessionMeta(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.setCookies(c, res)
	respond(c, http.StatusOK, loginResponse{
		User: res.User, Permissions: res.Permissions, AccessToken: res.AccessToken, AccessExpires: res.AccessExpires,
	}, "logged in")
}

// Refresh handles POST /auth/refresh. The refresh token comes from its cookie or the JSON body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req refreshRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		token = req.RefreshToken
	}
	res, err := h.authService.Refresh(c.Request.Context(), token, sessionMeta(c))
	if err != nil {
		h.clearCookies(c)
		fail(c, err)
		return
	}
	h.setCookies(c, res)
	respond(c, http.StatusOK, loginResponse{
		User: res.User, Permissions: res.Permissions, AccessToken: res.AccessToken, AccessExpires: res.AccessExpires,
	}, "token refreshed")
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	h.clearCookies(c)
	respond(c, http.StatusOK, nil, "logged out")
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.authService.Me(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile, "")
}

// ChangePassword handles PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetActor(c), &req); err != nil {
		fail(c, err)
		return
	}
	h.clearCookies(c)
	respond(c, http.StatusOK, nil, "password changed, please log in again")
}

func (h *AuthHandler) setCookies(c *gin.Context, res *services.AuthResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, res.AccessToken, maxAge(res.AccessExpires), "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, res.RefreshToken, maxAge(res.RefreshExpires), "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func maxAge(expires time.Time) int {
	return int(time.Until(expires).Seconds())
}

func sessionMeta(c *gin.Context) services.SessionMeta {
	return services.SessionMeta{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}
