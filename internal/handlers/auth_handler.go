// internal/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/auth"
)

type AuthHandler struct {
	Auth   *auth.Service
	Logger *zap.Logger
}

func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: svc, Logger: logger}
}

func (h *AuthHandler) tokenResponse(c *gin.Context, status int, res *auth.Result) {
	c.JSON(status, gin.H{
		"status":       "ok",
		"access_token": res.AccessToken,
		"token_type":   res.TokenType,
		"user":         res.User,
	})
}

// =========================
// REGISTER
// =========================
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if !bind(c, &req) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.tokenResponse(c, http.StatusOK, res)
}

// =========================
// LOGIN
// =========================
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginInput
	if !bind(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.tokenResponse(c, http.StatusOK, res)
}

// =========================
// ME
// =========================
func (h *AuthHandler) Me(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	u, err := h.Auth.Me(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, u.Principal())
}

// =========================
// TOTP
// =========================
func (h *AuthHandler) SetupTOTP(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	url, err := h.Auth.SetupTOTP(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"otpauth": url})
}

type VerifyTotpReq struct {
	Code string `json:"code" binding:"required"`
}

func (h *AuthHandler) VerifyTOTP(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req VerifyTotpReq
	if !bind(c, &req) {
		return
	}
	if err := h.Auth.VerifyTOTP(c.Request.Context(), p, req.Code); err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"totp_enabled": true})
}
