package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/service"
)

// HealthHandler reports API and database health.
type HealthHandler struct {
	schoolService *service.SchoolService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(schoolService *service.SchoolService) *HealthHandler {
	return &HealthHandler{schoolService: schoolService}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ok, err := h.schoolService.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.HealthStatus{OK: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.HealthStatus{OK: true, DB: ok})
}
