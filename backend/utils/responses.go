package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope of every successful answer.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the envelope of every failed answer.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// PaginatedResponse is the envelope of a page of a listing.
type PaginatedResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func OK(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusOK, data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

func Paginate(c *fiber.Ctx, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(PaginatedResponse{
		Success:  true,
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func Error(c *fiber.Ctx, status int, message string, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	}
	if len(details) > 0 {
		response.Details = details[0]
	}
	return c.Status(status).JSON(response)
}

func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return Error(c, fiber.StatusUnprocessableEntity, "validation failed", fields)
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// ErrorHandler renders errors that escape handlers (routing misses, panics
// recovered by fiber, body limit) with the same envelope.
func ErrorHandler(log *Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled error", "path", c.Path(), "method", c.Method(), "error", err)
		}
		return Error(c, code, message)
	}
}
