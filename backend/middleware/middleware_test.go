package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

var testCfg = &config.Config{JWTSecret: "testsecret"}

func whoami(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user_id": UserID(c), "role": Role(c)})
}

func request(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(7, role, testCfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthMiddleware(testCfg), whoami)

	assert.Equal(t, http.StatusUnauthorized, request(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, request(t, app, "garbage"))
	assert.Equal(t, http.StatusOK, request(t, app, token(t, models.RoleUser)))
}

func TestOptionalAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", OptionalAuth(testCfg), whoami)

	assert.Equal(t, http.StatusOK, request(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, request(t, app, "garbage"))
	assert.Equal(t, http.StatusOK, request(t, app, token(t, models.RoleAdmin)))
}

func TestAdminMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthMiddleware(testCfg), AdminMiddleware(), whoami)

	assert.Equal(t, http.StatusForbidden, request(t, app, token(t, models.RoleUser)))
	assert.Equal(t, http.StatusOK, request(t, app, token(t, models.RoleAdmin)))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, utils.NewNopLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	app := fiber.New()
	app.Get("/", rl.Handler(), whoami)

	assert.Equal(t, http.StatusOK, request(t, app, ""))
	assert.Equal(t, http.StatusOK, request(t, app, ""))
	assert.Equal(t, http.StatusTooManyRequests, request(t, app, ""))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, request(t, app, ""))

	now = now.Add(time.Hour)
	rl.Cleanup(time.Minute)
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestLoggingMiddlewareUsesErrorHandler(t *testing.T) {
	log := utils.NewNopLogger()
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(log)})
	app.Use(LoggingMiddleware(log))
	app.Get("/", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "teapot") })

	assert.Equal(t, http.StatusTeapot, request(t, app, ""))
}
