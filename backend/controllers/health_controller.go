package controllers

import "github.com/gofiber/fiber/v2"

const (
	ServiceName = "university-tests"
	Version     = "2.0.0"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Root godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (hc *HealthController) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Psychological testing API",
		"version": Version,
	})
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (hc *HealthController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": ServiceName,
		"version": Version,
	})
}
