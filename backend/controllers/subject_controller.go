package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type SubjectController struct {
	Subjects *services.SubjectService
	Cfg      *config.Config
	Log      *utils.Logger
	Validate *utils.Validator
}

func NewSubjectController(subjects *services.SubjectService, cfg *config.Config, log *utils.Logger, v *utils.Validator) *SubjectController {
	return &SubjectController{Subjects: subjects, Cfg: cfg, Log: log, Validate: v}
}

type SubjectRequest struct {
	Slug        string              `json:"slug" validate:"required,slug,max=100"`
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description"`
	Icon        string              `json:"icon" validate:"max=100"`
	I18n        models.Translations `json:"i18n"`
}

func (r SubjectRequest) input() services.SubjectInput {
	return services.SubjectInput{Slug: r.Slug, Title: r.Title, Description: r.Description, Icon: r.Icon, I18n: r.I18n}
}

func (sc *SubjectController) List(c *fiber.Ctx) error {
	subjects, err := sc.Subjects.List(c.UserContext(), utils.RequestLanguage(c, sc.Cfg.DefaultLanguage))
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return utils.OK(c, subjects)
}

func (sc *SubjectController) Get(c *fiber.Ctx) error {
	lang := utils.RequestLanguage(c, sc.Cfg.DefaultLanguage)
	subject, err := sc.Subjects.GetBySlug(c.UserContext(), c.Params("slug"), lang, viewer(c))
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return utils.OK(c, subject)
}

func (sc *SubjectController) Create(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := parseBody(c, sc.Validate, &req); err != nil {
		return respondError(c, sc.Log, err)
	}
	subject, err := sc.Subjects.Create(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return utils.Created(c, subject)
}

func (sc *SubjectController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	var req SubjectRequest
	if err := parseBody(c, sc.Validate, &req); err != nil {
		return respondError(c, sc.Log, err)
	}
	subject, err := sc.Subjects.Update(c.UserContext(), id, req.input())
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return utils.OK(c, subject)
}

func (sc *SubjectController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	if err := sc.Subjects.Delete(c.UserContext(), id); err != nil {
		return respondError(c, sc.Log, err)
	}
	return utils.OK(c, fiber.Map{"id": id})
}
