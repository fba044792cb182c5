package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/controllers"
	"github.com/katuripu/katuripu/backend/metrics"
	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

func SetupRoutes(app *fiber.App, svc *services.Services, db controllers.Pinger, limiter *middleware.RateLimiter, cfg *config.Config, log *utils.Logger) {
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.LoggingMiddleware(log))
	app.Use(middleware.MetricsMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept,
			fiber.HeaderAuthorization, fiber.HeaderAcceptLanguage,
		}, ", "),
	}))

	validate := utils.NewValidator()

	healthController := controllers.NewHealthController(db, log)
	app.Get("/healthz", healthController.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuth(cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(svc.Users, cfg, log, validate)
	auth := app.Group("/api/auth", limiter.Handler())
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(svc, cfg, log, validate)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/activity", authMiddleware, userController.GetUserActivity)

	// Subject routes
	subjectController := controllers.NewSubjectController(svc.Subjects, cfg, log, validate)
	app.Get("/api/subjects", optionalAuth, subjectController.List)
	app.Get("/api/subjects/:slug", optionalAuth, subjectController.Get)

	adminSubjects := app.Group("/api/admin/subjects", authMiddleware, adminMiddleware)
	adminSubjects.Post("/", subjectController.Create)
	adminSubjects.Put("/:id", subjectController.Update)
	adminSubjects.Delete("/:id", subjectController.Delete)

	// Roadmap routes
	roadmapController := controllers.NewRoadmapController(svc.Roadmaps, cfg, log, validate)
	roadmaps := app.Group("/api/roadmap")
	roadmaps.Get("/", optionalAuth, roadmapController.List)
	roadmaps.Get("/:id", optionalAuth, roadmapController.Get)
	roadmaps.Get("/:id/order", optionalAuth, roadmapController.Order)
	roadmaps.Post("/", authMiddleware, adminMiddleware, roadmapController.Create)
	roadmaps.Put("/:id", authMiddleware, adminMiddleware, roadmapController.Update)
	roadmaps.Delete("/:id", authMiddleware, adminMiddleware, roadmapController.Delete)
	roadmaps.Put("/:id/graph", authMiddleware, adminMiddleware, roadmapController.SaveGraph)

	// Node routes
	nodeController := controllers.NewNodeController(svc.Nodes, cfg, log, validate)
	nodes := app.Group("/api/node")
	nodes.Get("/:id", optionalAuth, nodeController.Get)
	nodes.Post("/", authMiddleware, adminMiddleware, nodeController.Create)
	nodes.Put("/:id", authMiddleware, adminMiddleware, nodeController.Update)
	nodes.Delete("/:id", authMiddleware, adminMiddleware, nodeController.Delete)
	nodes.Post("/:id/exercises", authMiddleware, adminMiddleware, nodeController.AttachExercise)
	nodes.Put("/:id/exercises/order", authMiddleware, adminMiddleware, nodeController.ReorderExercises)
	nodes.Delete("/:id/exercises/:exerciseId", authMiddleware, adminMiddleware, nodeController.DetachExercise)

	// Edge routes
	edgeController := controllers.NewEdgeController(svc.Edges, log, validate)
	edges := app.Group("/api/edge", authMiddleware, adminMiddleware)
	edges.Post("/", edgeController.Create)
	edges.Delete("/:id", edgeController.Delete)

	// Exercise routes
	exerciseController := controllers.NewExerciseController(svc.Exercises, cfg, log, validate)
	exercises := app.Group("/api/exercise")
	exercises.Get("/", optionalAuth, exerciseController.List)
	exercises.Get("/:id", optionalAuth, exerciseController.Get)
	exercises.Post("/", authMiddleware, adminMiddleware, exerciseController.Create)
	exercises.Put("/:id", authMiddleware, adminMiddleware, exerciseController.Update)
	exercises.Delete("/:id", authMiddleware, adminMiddleware, exerciseController.Delete)

	// Progress routes
	progressController := controllers.NewProgressController(svc.Progress, cfg, log, validate)
	overviewController := controllers.NewOverviewController(svc.Progress, svc.Analytics, cfg, log)
	progress := app.Group("/api/user-progress", authMiddleware)
	progress.Post("/exercise/:exerciseId", progressController.ToggleExercise)
	progress.Get("/roadmap/:roadmapId", progressController.GetRoadmapProgress)
	progress.Get("/overview", overviewController.Overview)
	progress.Get("/gamification", progressController.GetGamification)
	progress.Get("/leaderboard", progressController.GetLeaderboard)
	progress.Get("/recommendations", overviewController.Recommendations)

	// Admin analytics
	analyticsController := controllers.NewAnalyticsController(svc.Analytics, log)
	analytics := app.Group("/api/admin/analytics", authMiddleware, adminMiddleware)
	analytics.Get("/roadmap/:id", analyticsController.GetRoadmapAnalytics)
	analytics.Get("/platform", analyticsController.GetPlatformAnalytics)
}
