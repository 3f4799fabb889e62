package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/middleware"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "ok", "data": data})
}

// fail logs unexpected errors before answering; typed errors are the caller's problem.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	if apperr.Code(err) == "internal_error" {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	middleware.Abort(c, err)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.Abort(c, apperr.Validation("invalid body: %s", err.Error()))
		return false
	}
	return true
}

// caller returns the principal set by AuthRequired.
func caller(c *gin.Context) (models.Principal, bool) {
	p, found := middleware.Principal(c)
	if !found {
		middleware.Abort(c, apperr.Auth("missing user"))
	}
	return p, found
}

func created(c *gin.Context, data any) { ok(c, http.StatusCreated, data) }
