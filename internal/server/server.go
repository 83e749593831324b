// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	"echoboard/internal/cache"
	"echoboard/internal/config"
	"echoboard/internal/database"
	"echoboard/internal/featureflags"
	"echoboard/internal/middleware"
	"echoboard/internal/models"
	"echoboard/internal/notifications"
	"echoboard/internal/observability"
	"echoboard/internal/repository"
	"echoboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo      repository.UserRepository
	topicRepo     repository.TopicRepository
	feedbackRepo  repository.FeedbackRepository
	commentRepo   repository.CommentRepository
	taskRepo      repository.TaskRepository
	changelogRepo repository.ChangelogRepository

	topicService     *service.TopicService
	feedbackService  *service.FeedbackService
	commentService   *service.CommentService
	taskService      *service.TaskService
	changelogService *service.ChangelogService
	userService      *service.UserService

	notifier     *notifications.Notifier
	featureFlags *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	changelogRepo := repository.NewChangelogRepository(db)

	// Initialize Prometheus metrics
	prom := observability.InitMetrics("echoboard-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		topicRepo:      topicRepo,
		feedbackRepo:   feedbackRepo,
		commentRepo:    commentRepo,
		taskRepo:       taskRepo,
		changelogRepo:  changelogRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.topicService = service.NewTopicService(topicRepo)
	server.feedbackService = service.NewFeedbackService(feedbackRepo, topicRepo, db)
	server.commentService = service.NewCommentService(commentRepo, feedbackRepo, db)
	server.taskService = service.NewTaskService(taskRepo, feedbackRepo, userRepo, db)
	server.changelogService = service.NewChangelogService(changelogRepo, taskRepo)
	server.userService = service.NewUserService(userRepo)

	// Event publishing is enabled only when Redis is available.
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	middleware.InitMiddleware(cfg)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Echoboard Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public browse routes; OptionalAuth personalizes upvote state.
	topics := api.Group("/topics")
	topics.Get("/", s.GetTopics)
	topics.Get("/:id", s.GetTopic)

	publicFeedback := api.Group("/feedback", middleware.OptionalAuth)
	publicFeedback.Get("/", s.GetFeedbackList)
	publicFeedback.Get("/:id/comments", s.GetComments)
	publicFeedback.Get("/:id", s.GetFeedback)

	publicChangelogs := api.Group("/changelogs")
	publicChangelogs.Get("/", s.GetChangelogs)
	publicChangelogs.Get("/:id", s.GetChangelog)

	// The task board is readable without a login, like feedback and
	// changelogs; only mutations need auth.
	publicTasks := api.Group("/tasks")
	publicTasks.Get("/", s.GetTasks)
	publicTasks.Get("/:id", s.GetTask)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// Topic management (admin checks live in the service layer)
	protectedTopics := protected.Group("/topics")
	protectedTopics.Post("/", s.CreateTopic)
	protectedTopics.Put("/:id", s.UpdateTopic)
	protectedTopics.Delete("/:id", s.DeleteTopic)

	// Feedback routes
	feedback := protected.Group("/feedback")
	feedback.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_feedback"), s.CreateFeedback)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	feedback.Post("/:id/upvote", s.ToggleUpvote)
	feedback.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	feedback.Put("/:id", s.UpdateFeedback)
	feedback.Delete("/:id", s.DeleteFeedback)

	// Comment routes (edit, delete, answer marking)
	comments := protected.Group("/comments")
	comments.Post("/:id/answer", s.MarkAnswer)
	comments.Delete("/:id/answer", s.UnmarkAnswer)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Task board mutations
	tasks := protected.Group("/tasks")
	tasks.Post("/", s.CreateTask)
	tasks.Post("/:id/advance", s.AdvanceTask)
	tasks.Post("/:id/resolve", s.ResolveTesting)
	tasks.Put("/:id", s.UpdateTask)
	tasks.Delete("/:id", s.DeleteTask)

	// Changelog management
	changelogs := protected.Group("/changelogs")
	changelogs.Post("/", s.CreateChangelog)
	changelogs.Put("/:id", s.UpdateChangelog)
	changelogs.Delete("/:id", s.DeleteChangelog)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.GetUsers)
	users.Get("/:id/cached", s.GetUserCached)
	users.Put("/:id/role", s.UpdateUserRole)
	users.Get("/:id", s.GetUserProfile)

	// Feature flags for the acting user
	protected.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: the board serves without caching or events.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Echoboard API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
