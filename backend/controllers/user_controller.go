package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

const dateLayout = "2006-01-02"

type UserController struct {
	Users     *services.UserService
	Progress  *services.ProgressService
	Analytics *services.AnalyticsService
	Cfg       *config.Config
	Log       *utils.Logger
	Validate  *utils.Validator
}

func NewUserController(s *services.Services, cfg *config.Config, log *utils.Logger, v *utils.Validator) *UserController {
	return &UserController{Users: s.Users, Progress: s.Progress, Analytics: s.Analytics, Cfg: cfg, Log: log, Validate: v}
}

type UpdateUserRequest struct {
	Username          *string `json:"username" validate:"omitempty,alphanum_,min=3,max=32"`
	Email             *string `json:"email" validate:"omitempty,email"`
	PreferredLanguage *string `json:"preferred_language" validate:"omitempty,oneof=ar fr en"`
	OldPassword       string  `json:"old_password" validate:"required_with=NewPassword"`
	NewPassword       string  `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile and gamification summary
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	user, err := uc.Users.Get(c.UserContext(), userID)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	lang := utils.MatchLanguage(c.Query("lang"), "", user.PreferredLanguage)
	gamification, err := uc.Progress.Gamification(c.UserContext(), userID, lang)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.OK(c, fiber.Map{
		"user":         user,
		"gamification": gamification,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Changes username, email, language or password
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := parseBody(c, uc.Validate, &req); err != nil {
		return respondError(c, uc.Log, err)
	}
	user, err := uc.Users.UpdateProfile(c.UserContext(), middleware.UserID(c), services.ProfileInput{
		Username:          req.Username,
		Email:             req.Email,
		PreferredLanguage: req.PreferredLanguage,
		OldPassword:       req.OldPassword,
		NewPassword:       req.NewPassword,
	})
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.OK(c, user)
}

// GetUserActivity lists completions and logins between start_date and
// end_date (YYYY-MM-DD, inclusive), the last 30 days by default.
func (uc *UserController) GetUserActivity(c *fiber.Ctx) error {
	now := time.Now().UTC()
	end := now
	start := now.AddDate(0, -1, 0)
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return utils.BadRequest(c, "Invalid start_date format. Use YYYY-MM-DD")
		}
		start = t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return utils.BadRequest(c, "Invalid end_date format. Use YYYY-MM-DD")
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return utils.BadRequest(c, "end_date must not be before start_date")
	}

	activity, err := uc.Analytics.Activity(c.UserContext(), middleware.UserID(c), start, end)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.OK(c, activity)
}
