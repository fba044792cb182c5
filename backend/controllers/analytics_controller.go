package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
	Log       *utils.Logger
}

func NewAnalyticsController(analytics *services.AnalyticsService, log *utils.Logger) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, Log: log}
}

// GetRoadmapAnalytics godoc
// @Summary Learner statistics for one roadmap
// @Tags analytics
// @Produce json
// @Param id path int true "Roadmap ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/analytics/roadmap/{id} [get]
func (ac *AnalyticsController) GetRoadmapAnalytics(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	stats, err := ac.Analytics.Roadmap(c.UserContext(), id)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.OK(c, stats)
}

func (ac *AnalyticsController) GetPlatformAnalytics(c *fiber.Ctx) error {
	stats, err := ac.Analytics.Platform(c.UserContext())
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.OK(c, stats)
}
