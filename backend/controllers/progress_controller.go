package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type ProgressController struct {
	Progress *services.ProgressService
	Cfg      *config.Config
	Log      *utils.Logger
	Validate *utils.Validator
}

func NewProgressController(progress *services.ProgressService, cfg *config.Config, log *utils.Logger, v *utils.Validator) *ProgressController {
	return &ProgressController{Progress: progress, Cfg: cfg, Log: log, Validate: v}
}

type ToggleExerciseRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// ToggleExercise godoc
// @Summary Mark an exercise completed or not
// @Description Records completion and returns XP, level and newly unlocked achievements
// @Tags progress
// @Accept json
// @Produce json
// @Param exerciseId path int true "Exercise ID"
// @Param body body ToggleExerciseRequest true "Completion flag"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user-progress/exercise/{exerciseId} [post]
func (pc *ProgressController) ToggleExercise(c *fiber.Ctx) error {
	exerciseID, err := paramID(c, "exerciseId")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	var req ToggleExerciseRequest
	if err := parseBody(c, pc.Validate, &req); err != nil {
		return respondError(c, pc.Log, err)
	}
	lang := utils.RequestLanguage(c, pc.Cfg.DefaultLanguage)
	result, err := pc.Progress.SetExerciseCompletion(c.UserContext(), middleware.UserID(c), exerciseID, *req.Completed, lang)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.OK(c, result)
}

// GetRoadmapProgress godoc
// @Summary Progress in one roadmap
// @Description Per-node completion and lock state in topological order
// @Tags progress
// @Produce json
// @Param roadmapId path int true "Roadmap ID"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /user-progress/roadmap/{roadmapId} [get]
func (pc *ProgressController) GetRoadmapProgress(c *fiber.Ctx) error {
	roadmapID, err := paramID(c, "roadmapId")
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	lang := utils.RequestLanguage(c, pc.Cfg.DefaultLanguage)
	progress, err := pc.Progress.RoadmapProgress(c.UserContext(), viewer(c), roadmapID, lang)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.OK(c, progress)
}

func (pc *ProgressController) GetGamification(c *fiber.Ctx) error {
	lang := utils.RequestLanguage(c, pc.Cfg.DefaultLanguage)
	view, err := pc.Progress.Gamification(c.UserContext(), middleware.UserID(c), lang)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.OK(c, view)
}

func (pc *ProgressController) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := pc.Progress.Leaderboard(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.OK(c, entries)
}
