package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

type AuthController struct {
	Users    *services.UserService
	Cfg      *config.Config
	Log      *utils.Logger
	Validate *utils.Validator
}

func NewAuthController(users *services.UserService, cfg *config.Config, log *utils.Logger, v *utils.Validator) *AuthController {
	return &AuthController{Users: users, Cfg: cfg, Log: log, Validate: v}
}

type RegisterRequest struct {
	Username          string `json:"username" validate:"required,alphanum_,min=3,max=32"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8,max=72"`
	PreferredLanguage string `json:"preferred_language" validate:"omitempty,oneof=ar fr en"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a learner account and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, ac.Validate, &req); err != nil {
		return respondError(c, ac.Log, err)
	}

	user, err := ac.Users.Register(c.UserContext(), services.RegisterInput{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		return respondError(c, ac.Log, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg.JWTSecret, ac.Cfg.JWTTTL)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	ac.Log.Info("user registered", "user_id", user.ID)
	return utils.Created(c, AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary User login
// @Description Authenticate with username (or email) and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, ac.Validate, &req); err != nil {
		return respondError(c, ac.Log, err)
	}

	user, err := ac.Users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, ac.Log, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg.JWTSecret, ac.Cfg.JWTTTL)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.OK(c, AuthResponse{Token: token, User: user})
}
