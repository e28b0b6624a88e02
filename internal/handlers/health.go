package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/services"
)

// HealthHandler reports database and template directory health
type HealthHandler struct {
	DB        *gorm.DB
	DBType    string
	Templates services.TemplateChecker
}

// Health handles GET /healthz
// @Summary Health report
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /healthz [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.DBType, h.DB, h.Templates)
	status := fiber.StatusOK
	if !result.Healthy() {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
