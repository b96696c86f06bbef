package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/logger"
	"projectly/internal/model"
	"projectly/internal/service"
)

type AuthHandler struct{ auth *service.AuthService }

func NewAuthHandler(auth *service.AuthService) *AuthHandler { return &AuthHandler{auth: auth} }

// POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		logger.Warn("register.failed", "email", req.Email, "err", err)
		respondError(c, err)
		return
	}
	logger.Info("register.ok", "uid", u.ID, "email", u.Email)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Profile.Role,
	})
}

// POST /login/
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("login.failed", "email", req.Email)
		respondError(c, err)
		return
	}
	logger.Info("login.ok", "email", pair.Email)
	c.JSON(http.StatusOK, pair)
}

// POST /social-auth/
func (h *AuthHandler) SocialAuth(c *gin.Context) {
	var req model.SocialAuthRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.auth.SocialLogin(c.Request.Context(), req.Provider, req.AccessToken)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("login.social", "provider", req.Provider, "email", pair.Email)
	c.JSON(http.StatusOK, pair)
}

// POST /token/refresh/
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	access, err := h.auth.RefreshToken(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// GET /csrf/
func (h *AuthHandler) CSRF(c *gin.Context) {
	token := genToken()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("csrftoken", token, 365*24*3600, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

// GET /me/
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.auth.GetUser(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(*u))
}

// GET /role/
func (h *AuthHandler) GetRole(c *gin.Context) {
	u, err := h.auth.GetUser(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if u.Profile == nil {
		c.JSON(http.StatusOK, gin.H{"role": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": u.Profile.Role})
}

// POST /role/
func (h *AuthHandler) SetRole(c *gin.Context) {
	var req model.RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.auth.SetRole(c.Request.Context(), caller(c), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": p.Role})
}

func genToken() string {
	b := make([]byte, 16)
	rand.Read(b) // never returns an error as of Go 1.24
	return hex.EncodeToString(b)
}
