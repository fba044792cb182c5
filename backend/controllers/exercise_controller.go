package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type ExerciseController struct {
	Exercises *services.ExerciseService
	Cfg       *config.Config
	Log       *utils.Logger
	Validate  *utils.Validator
}

func NewExerciseController(exercises *services.ExerciseService, cfg *config.Config, log *utils.Logger, v *utils.Validator) *ExerciseController {
	return &ExerciseController{Exercises: exercises, Cfg: cfg, Log: log, Validate: v}
}

type ExerciseRequest struct {
	Title        string              `json:"title" validate:"required,max=200"`
	ExerciseType string              `json:"exercise_type" validate:"omitempty,oneof=quiz coding theory"`
	Difficulty   string              `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Content      string              `json:"content"`
	Solution     string              `json:"solution"`
	I18n         models.Translations `json:"i18n"`
}

func (r ExerciseRequest) input() services.ExerciseInput {
	return services.ExerciseInput{
		Title:        r.Title,
		ExerciseType: r.ExerciseType,
		Difficulty:   r.Difficulty,
		Content:      r.Content,
		Solution:     r.Solution,
		I18n:         r.I18n,
	}
}

type exerciseQuery struct {
	Type       string `validate:"omitempty,oneof=quiz coding theory" json:"type"`
	Difficulty string `validate:"omitempty,oneof=easy medium hard" json:"difficulty"`
}

// List godoc
// @Summary List exercises
// @Description Paginated exercise catalog filtered by type, difficulty and search. Solutions are never included.
// @Tags exercises
// @Produce json
// @Param type query string false "quiz, coding or theory"
// @Param difficulty query string false "easy, medium or hard"
// @Param search query string false "Title search"
// @Success 200 {object} utils.SuccessResponse
// @Router /exercise [get]
func (ec *ExerciseController) List(c *fiber.Ctx) error {
	q := exerciseQuery{Type: c.Query("type"), Difficulty: c.Query("difficulty")}
	if fields := ec.Validate.Struct(q); fields != nil {
		return utils.ValidationError(c, fields)
	}
	filter := services.ExerciseFilter{
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Search:     c.Query("search"),
		Page:       page(c),
	}
	exercises, total, err := ec.Exercises.List(c.UserContext(), filter, utils.RequestLanguage(c, ec.Cfg.DefaultLanguage))
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	p := filter.Page.Normalize()
	return utils.Paginate(c, exercises, total, p.Page, p.PageSize)
}

func (ec *ExerciseController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	exercise, err := ec.Exercises.Get(c.UserContext(), id, utils.RequestLanguage(c, ec.Cfg.DefaultLanguage), viewer(c))
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	return utils.OK(c, exercise)
}

func (ec *ExerciseController) Create(c *fiber.Ctx) error {
	var req ExerciseRequest
	if err := parseBody(c, ec.Validate, &req); err != nil {
		return respondError(c, ec.Log, err)
	}
	exercise, err := ec.Exercises.Create(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	return utils.Created(c, exercise)
}

func (ec *ExerciseController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	var req ExerciseRequest
	if err := parseBody(c, ec.Validate, &req); err != nil {
		return respondError(c, ec.Log, err)
	}
	exercise, err := ec.Exercises.Update(c.UserContext(), id, req.input())
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	return utils.OK(c, exercise)
}

func (ec *ExerciseController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ec.Log, err)
	}
	if err := ec.Exercises.Delete(c.UserContext(), id); err != nil {
		return respondError(c, ec.Log, err)
	}
	return utils.OK(c, fiber.Map{"id": id})
}
