package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/documents"
)

type ClaimHandler struct {
	Claims    *claims.Manager
	Documents *documents.Service
	Logger    *zap.Logger
}

func NewClaimHandler(m *claims.Manager, docs *documents.Service, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{Claims: m, Documents: docs, Logger: logger}
}

func (h *ClaimHandler) Create(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req claims.SubmitInput
	if !bind(c, &req) {
		return
	}
	claim, err := h.Claims.Submit(c.Request.Context(), p, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	created(c, claim)
}

// List accepts ?status=<claim status>|all.
func (h *ClaimHandler) List(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	rows, err := h.Claims.List(c.Request.Context(), p, c.DefaultQuery("status", claims.FilterAll))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *ClaimHandler) Get(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	claim, err := h.Claims.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

func (h *ClaimHandler) Review(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req claims.ReviewInput
	if !bind(c, &req) {
		return
	}
	claim, err := h.Claims.Review(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// Presign returns an upload URL; the resulting key goes into the claim's documents.
func (h *ClaimHandler) Presign(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req documents.PresignInput
	if !bind(c, &req) {
		return
	}
	up, err := h.Documents.Presign(c.Request.Context(), p.UserID, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, up)
}
