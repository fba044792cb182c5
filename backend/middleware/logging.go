package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/utils"
)

// LoggingMiddleware logs one line per request once the handler returned.
func LoggingMiddleware(log *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler write the response so the status is final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		kv := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		}
		if id := UserID(c); id != 0 {
			kv = append(kv, "user_id", id)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", kv...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}
		return nil
	}
}
