package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/utils"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	DB  Pinger
	Log *utils.Logger
}

func NewHealthController(db Pinger, log *utils.Logger) *HealthController {
	return &HealthController{DB: db, Log: log}
}

func (hc *HealthController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := hc.DB.PingContext(ctx); err != nil {
		hc.Log.Warn("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
