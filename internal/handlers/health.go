// internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one backing dependency answers.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	Checks  []HealthCheck
	Timeout time.Duration
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second}
}

// Health answers 200 when every dependency responds and 503 with the failing
// ones otherwise. With no checks configured it only reports that the process is up.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := gin.H{}
	for _, chk := range h.Checks {
		if err := chk.Check(ctx); err != nil {
			deps[chk.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      "carequo",
		"dependencies": deps,
	})
}
