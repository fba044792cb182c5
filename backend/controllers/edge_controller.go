package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type EdgeController struct {
	Edges    *services.EdgeService
	Log      *utils.Logger
	Validate *utils.Validator
}

func NewEdgeController(edges *services.EdgeService, log *utils.Logger, v *utils.Validator) *EdgeController {
	return &EdgeController{Edges: edges, Log: log, Validate: v}
}

type EdgeRequest struct {
	RoadmapID    uint `json:"roadmap_id" validate:"required"`
	SourceNodeID uint `json:"source_node_id" validate:"required"`
	TargetNodeID uint `json:"target_node_id" validate:"required"`
}

func (ec *EdgeController) Create(c *fiber.Ctx) error {
	var req EdgeRequest
	if err := parseBody(c, ec.Validate, &req); err != nil {
		return respondError(c, ec.Log, err)
	}
	edge, err := ec.Edges.Create(c.UserContext(), services.EdgeInput{
		RoadmapID:    req.RoadmapID,
		SourceNodeID: req.SourceNodeID,
		TargetNodeID: req.TargetNodeID,
	})
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	return utils.Created(c, edge)
}

func (ec *EdgeController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	if err := ec.Edges.Delete(c.UserContext(), id); err != nil {
		return respondError(c, ec.Log, err)
	}
	return utils.OK(c, fiber.Map{"id": id})
}
