package handlers

import (
	"net/http"
	"time"

	"careermate/internal/application/usecase"
	"careermate/internal/middleware"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	auth   *usecase.AuthUseCase
	cookie CookieConfig
}

func NewAuthHandler(auth *usecase.AuthUseCase, cookie CookieConfig) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing required fields")
		return
	}

	session, err := h.auth.Register(c, req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Error creating user")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Signup successful",
		"user":         gin.H{"username": session.User.Username, "email": session.User.Email},
		"access_token": session.AccessToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid credentials")
		return
	}

	session, err := h.auth.Login(c, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Error logging in")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"user":         gin.H{"username": session.User.Username, "email": session.User.Email},
		"access_token": session.AccessToken,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Refresh token not found"})
		return
	}

	session, err := h.auth.Refresh(c, refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		respondError(c, err, "Invalid refresh token")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"access_token": session.AccessToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(refreshCookie); err == nil {
		_ = h.auth.Logout(c, refreshToken)
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me never fails: anonymous or unknown callers get loggedIn=false.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}

	user, err := h.auth.Me(c, caller.UserID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loggedIn":  true,
		"username":  user.Username,
		"email":     user.Email,
		"avatarUrl": user.AvatarURL,
	})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, token, int(h.cookie.MaxAge.Seconds()), "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}
