package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

// OverviewController serves the learner dashboard.
type OverviewController struct {
	Progress  *services.ProgressService
	Analytics *services.AnalyticsService
	Cfg       *config.Config
	Log       *utils.Logger
}

func NewOverviewController(progress *services.ProgressService, analytics *services.AnalyticsService, cfg *config.Config, log *utils.Logger) *OverviewController {
	return &OverviewController{Progress: progress, Analytics: analytics, Cfg: cfg, Log: log}
}

// Overview godoc
// @Summary Progress across started roadmaps
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /user-progress/overview [get]
func (oc *OverviewController) Overview(c *fiber.Ctx) error {
	lang := utils.RequestLanguage(c, oc.Cfg.DefaultLanguage)
	overview, err := oc.Progress.Overview(c.UserContext(), middleware.UserID(c), lang)
	if err != nil {
		return respondError(c, oc.Log, err)
	}
	return utils.OK(c, overview)
}

func (oc *OverviewController) Recommendations(c *fiber.Ctx) error {
	lang := utils.RequestLanguage(c, oc.Cfg.DefaultLanguage)
	roadmaps, err := oc.Analytics.Recommendations(c.UserContext(), middleware.UserID(c), lang)
	if err != nil {
		return respondError(c, oc.Log, err)
	}
	return utils.OK(c, roadmaps)
}
