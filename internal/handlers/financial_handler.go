package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
)

type FinancialHandler struct {
	Ledger *ledger.Service
	Logger *zap.Logger
}

func NewFinancialHandler(svc *ledger.Service, logger *zap.Logger) *FinancialHandler {
	return &FinancialHandler{Ledger: svc, Logger: logger}
}

func (h *FinancialHandler) Create(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req ledger.TransactionInput
	if !bind(c, &req) {
		return
	}
	tx, err := h.Ledger.RecordTransaction(c.Request.Context(), p, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	created(c, tx)
}

func (h *FinancialHandler) List(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	rows, err := h.Ledger.List(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *FinancialHandler) Stats(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	st, err := h.Ledger.Stats(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, st)
}
