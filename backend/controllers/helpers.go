package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

var errBadBody = errors.New("cannot parse JSON")

// parseBody decodes the JSON body into dst and validates it.
func parseBody(c *fiber.Ctx, v *utils.Validator, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errBadBody
	}
	if fields := v.Struct(dst); fields != nil {
		return &services.ValidationError{Fields: fields}
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &services.ValidationError{Fields: map[string]string{name: "must be a positive integer"}}
	}
	return uint(id), nil
}

func viewer(c *fiber.Ctx) services.Viewer {
	return services.Viewer{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}

func page(c *fiber.Ctx) services.Page {
	return services.Page{Page: c.QueryInt("page", 1), PageSize: c.QueryInt("page_size", 20)}
}

// respondError maps service errors onto the response envelope. Unexpected
// errors are logged and answered with a generic message.
func respondError(c *fiber.Ctx, log *utils.Logger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationError(c, verr.Fields)
	case errors.Is(err, errBadBody):
		return utils.BadRequest(c, "Cannot parse JSON")
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Resource not found")
	case errors.Is(err, services.ErrConflict):
		return utils.Conflict(c, "Resource already exists")
	case errors.Is(err, services.ErrCycle):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidEdge):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, services.ErrForbidden):
		return utils.Forbidden(c, "Forbidden")
	}
	log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return utils.InternalServerError(c, "Something went wrong")
}
