package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/metrics"
)

// MetricsMiddleware records request counts and latency by route pattern.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		metrics.RequestStarted()
		defer metrics.RequestFinished()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		metrics.ObserveRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
