package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type NodeController struct {
	Nodes    *services.NodeService
	Cfg      *config.Config
	Log      *utils.Logger
	Validate *utils.Validator
}

func NewNodeController(nodes *services.NodeService, cfg *config.Config, log *utils.Logger, v *utils.Validator) *NodeController {
	return &NodeController{Nodes: nodes, Cfg: cfg, Log: log, Validate: v}
}

type NodeRequest struct {
	RoadmapID   uint                `json:"roadmap_id" validate:"required"`
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description"`
	NodeType    string              `json:"node_type" validate:"omitempty,oneof=topic milestone"`
	PositionX   float64             `json:"position_x"`
	PositionY   float64             `json:"position_y"`
	I18n        models.Translations `json:"i18n"`
}

// NodeUpdateRequest is NodeRequest without the owning roadmap.
type NodeUpdateRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description"`
	NodeType    string              `json:"node_type" validate:"omitempty,oneof=topic milestone"`
	PositionX   float64             `json:"position_x"`
	PositionY   float64             `json:"position_y"`
	I18n        models.Translations `json:"i18n"`
}

type AttachExerciseRequest struct {
	ExerciseID uint `json:"exercise_id" validate:"required"`
	OrderIndex *int `json:"order_index" validate:"omitempty,min=0"`
}

type ReorderRequest struct {
	ExerciseIDs []uint `json:"exercise_ids" validate:"required"`
}

func (nc *NodeController) Create(c *fiber.Ctx) error {
	var req NodeRequest
	if err := parseBody(c, nc.Validate, &req); err != nil {
		return respondError(c, nc.Log, err)
	}
	node, err := nc.Nodes.Create(c.UserContext(), services.NodeInput{
		RoadmapID:   req.RoadmapID,
		Title:       req.Title,
		Description: req.Description,
		NodeType:    req.NodeType,
		PositionX:   req.PositionX,
		PositionY:   req.PositionY,
		I18n:        req.I18n,
	})
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.Created(c, node)
}

func (nc *NodeController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	node, err := nc.Nodes.Get(c.UserContext(), id, utils.RequestLanguage(c, nc.Cfg.DefaultLanguage), viewer(c))
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.OK(c, node)
}

func (nc *NodeController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	var req NodeUpdateRequest
	if err := parseBody(c, nc.Validate, &req); err != nil {
		return respondError(c, nc.Log, err)
	}
	node, err := nc.Nodes.Update(c.UserContext(), id, services.NodeInput{
		Title:       req.Title,
		Description: req.Description,
		NodeType:    req.NodeType,
		PositionX:   req.PositionX,
		PositionY:   req.PositionY,
		I18n:        req.I18n,
	})
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.OK(c, node)
}

func (nc *NodeController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	if err := nc.Nodes.Delete(c.UserContext(), id); err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.OK(c, fiber.Map{"id": id})
}

func (nc *NodeController) AttachExercise(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	var req AttachExerciseRequest
	if err := parseBody(c, nc.Validate, &req); err != nil {
		return respondError(c, nc.Log, err)
	}
	link, err := nc.Nodes.AttachExercise(c.UserContext(), id, req.ExerciseID, req.OrderIndex)
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.Created(c, link)
}

func (nc *NodeController) DetachExercise(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	exerciseID, err := paramID(c, "exerciseId")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	if err := nc.Nodes.DetachExercise(c.UserContext(), id, exerciseID); err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.OK(c, fiber.Map{"node_id": id, "exercise_id": exerciseID})
}

func (nc *NodeController) ReorderExercises(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	var req ReorderRequest
	if err := parseBody(c, nc.Validate, &req); err != nil {
		return respondError(c, nc.Log, err)
	}
	links, err := nc.Nodes.ReorderExercises(c.UserContext(), id, req.ExerciseIDs)
	if err != nil {
		return respondError(c, nc.Log, err)
	}
	return utils.OK(c, links)
}
