package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
)

type DirectoryHandler struct {
	Directory *directory.Service
	Logger    *zap.Logger
}

func NewDirectoryHandler(svc *directory.Service, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{Directory: svc, Logger: logger}
}

// =========================
// COMPANIES
// =========================

func (h *DirectoryHandler) CreateCompany(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req directory.CompanyInput
	if !bind(c, &req) {
		return
	}
	company, err := h.Directory.CreateCompany(c.Request.Context(), p, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	created(c, company)
}

func (h *DirectoryHandler) ListCompanies(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	rows, err := h.Directory.ListCompanies(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *DirectoryHandler) GetCompany(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	company, err := h.Directory.GetCompany(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, company)
}

// =========================
// EMPLOYEES
// =========================

func (h *DirectoryHandler) CreateEmployee(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req directory.EmployeeInput
	if !bind(c, &req) {
		return
	}
	e, err := h.Directory.CreateEmployee(c.Request.Context(), p, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	created(c, e)
}

func (h *DirectoryHandler) ListEmployees(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	rows, err := h.Directory.ListEmployees(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *DirectoryHandler) GetEmployee(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	e, err := h.Directory.GetEmployee(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, e)
}

func (h *DirectoryHandler) UpdateEmployee(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req directory.EmployeeInput
	if !bind(c, &req) {
		return
	}
	e, err := h.Directory.UpdateEmployee(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, e)
}

func (h *DirectoryHandler) DeleteEmployee(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	if err := h.Directory.DeleteEmployee(c.Request.Context(), p, c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Employee deleted successfully"})
}

// =========================
// WELLNESS
// =========================

func (h *DirectoryHandler) CreatePartner(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req directory.PartnerInput
	if !bind(c, &req) {
		return
	}
	partner, err := h.Directory.CreatePartner(c.Request.Context(), p, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	created(c, partner)
}

func (h *DirectoryHandler) ListPartners(c *gin.Context) {
	rows, err := h.Directory.ListPartners(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

func (h *DirectoryHandler) GetPartner(c *gin.Context) {
	partner, err := h.Directory.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, partner)
}

func (h *DirectoryHandler) CreateBooking(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	var req directory.BookingInput
	if !bind(c, &req) {
		return
	}
	b, err := h.Directory.CreateBooking(c.Request.Context(), p, req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	created(c, b)
}

func (h *DirectoryHandler) ListBookings(c *gin.Context) {
	p, found := caller(c)
	if !found {
		return
	}
	rows, err := h.Directory.ListBookings(c.Request.Context(), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, rows)
}
