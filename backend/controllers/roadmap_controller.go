package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type RoadmapController struct {
	Roadmaps *services.RoadmapService
	Cfg      *config.Config
	Log      *utils.Logger
	Validate *utils.Validator
}

func NewRoadmapController(roadmaps *services.RoadmapService, cfg *config.Config, log *utils.Logger, v *utils.Validator) *RoadmapController {
	return &RoadmapController{Roadmaps: roadmaps, Cfg: cfg, Log: log, Validate: v}
}

type RoadmapRequest struct {
	SubjectID   *uint               `json:"subject_id"`
	Slug        string              `json:"slug" validate:"required,slug,max=100"`
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description"`
	Difficulty  string              `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IsPublished bool                `json:"is_published"`
	I18n        models.Translations `json:"i18n"`
}

func (r RoadmapRequest) input() services.RoadmapInput {
	return services.RoadmapInput{
		SubjectID:   r.SubjectID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Difficulty:  r.Difficulty,
		IsPublished: r.IsPublished,
		I18n:        r.I18n,
	}
}

type GraphRequest struct {
	Nodes []services.NodePosition `json:"nodes" validate:"dive"`
	Edges []services.EdgeLink     `json:"edges" validate:"dive"`
}

func (rc *RoadmapController) List(c *fiber.Ctx) error {
	difficulty := c.Query("difficulty")
	if difficulty != "" && difficulty != models.DifficultyEasy && difficulty != models.DifficultyMedium && difficulty != models.DifficultyHard {
		return utils.BadRequest(c, "difficulty must be easy, medium or hard")
	}
	filter := services.RoadmapFilter{
		Subject:    c.Query("subject"),
		Search:     c.Query("search"),
		Difficulty: difficulty,
		Page:       page(c),
	}
	lang := utils.RequestLanguage(c, rc.Cfg.DefaultLanguage)

	roadmaps, total, err := rc.Roadmaps.List(c.UserContext(), filter, lang, viewer(c))
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	p := filter.Page.Normalize()
	return utils.Paginate(c, roadmaps, total, p.Page, p.PageSize)
}

func (rc *RoadmapController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	lang := utils.RequestLanguage(c, rc.Cfg.DefaultLanguage)
	roadmap, err := rc.Roadmaps.Detail(c.UserContext(), id, lang, viewer(c))
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.OK(c, roadmap)
}

func (rc *RoadmapController) Create(c *fiber.Ctx) error {
	var req RoadmapRequest
	if err := parseBody(c, rc.Validate, &req); err != nil {
		return respondError(c, rc.Log, err)
	}
	roadmap, err := rc.Roadmaps.Create(c.UserContext(), middleware.UserID(c), req.input())
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.Created(c, roadmap)
}

func (rc *RoadmapController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	var req RoadmapRequest
	if err := parseBody(c, rc.Validate, &req); err != nil {
		return respondError(c, rc.Log, err)
	}
	roadmap, err := rc.Roadmaps.Update(c.UserContext(), id, req.input())
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.OK(c, roadmap)
}

func (rc *RoadmapController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	if err := rc.Roadmaps.Delete(c.UserContext(), id); err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.OK(c, fiber.Map{"id": id})
}

// SaveGraph stores the canvas editor state: node positions and the full edge set.
func (rc *RoadmapController) SaveGraph(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	var req GraphRequest
	if err := parseBody(c, rc.Validate, &req); err != nil {
		return respondError(c, rc.Log, err)
	}
	edges, err := rc.Roadmaps.SaveGraph(c.UserContext(), id, services.GraphInput{Nodes: req.Nodes, Edges: req.Edges})
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.OK(c, fiber.Map{"roadmap_id": id, "edges": edges})
}

func (rc *RoadmapController) Order(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	order, err := rc.Roadmaps.TopologicalOrder(c.UserContext(), id, viewer(c))
	if err != nil {
		return respondError(c, rc.Log, err)
	}
	return utils.OK(c, fiber.Map{"roadmap_id": id, "order": order})
}
