package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/config"
	"traqcheck/candidate-onboarding/internal/handlers"
	"traqcheck/candidate-onboarding/internal/logger"
	"traqcheck/candidate-onboarding/internal/middleware"
	"traqcheck/candidate-onboarding/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logger.New(logger.Options{Service: "traqcheck-api", JSON: cfg.Log.JSON, Debug: cfg.Log.Debug})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	logger.Info("config loaded", zap.String("env", cfg.Server.Env), zap.String("db_driver", cfg.Database.Driver))

	// Initialize repository
	candidateRepo, err := config.InitRepository(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize repository", zap.Error(err))
	}

	// Initialize services
	store := services.NewLocalDocumentStore(cfg.Storage.UploadPath)
	if err := store.EnsureUploadDir(); err != nil {
		logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	extractor := services.NewFieldExtractor(cfg.Extraction.MinTextLength)
	processor := services.NewExtractionProcessor(
		candidateRepo,
		store,
		extractor,
		cfg.Worker.ExtractionTimeout,
		logger,
	)

	worker := services.NewWorker(
		candidateRepo,
		processor,
		services.WorkerConfig{
			Concurrency:      cfg.Worker.Concurrency,
			QueueSize:        cfg.Worker.QueueSize,
			PollInterval:     cfg.Worker.PollInterval,
			WatchdogCeiling:  cfg.Worker.WatchdogCeiling,
			WatchdogInterval: cfg.Worker.WatchdogInterval,
		},
		logger,
	)

	candidateService := services.NewCandidateService(
		candidateRepo,
		store,
		worker,
		cfg.Storage.MaxResumeSize,
		logger,
	)
	workflow := services.NewVerificationWorkflow(
		candidateRepo,
		store,
		services.NewRequestComposer(),
		services.NewKeyedMutex(),
		services.NewLogNotifier(logger),
		cfg.Storage.MaxDocumentSize,
		logger,
	)
	logger.Info("services initialized")

	// Start worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	// Rate limiting is optional and only active with Redis configured
	var uploadLimit fiber.Handler
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		uploadLimit = middleware.RateLimit(
			middleware.NewRedisLimiter(redisClient, cfg.Redis.UploadRateLimit, cfg.Redis.UploadWindow, "traqcheck:upload"),
		)
		logger.Info("upload rate limiting enabled", zap.Int("limit", cfg.Redis.UploadRateLimit), zap.Duration("window", cfg.Redis.UploadWindow))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TraqCheck Candidate Onboarding API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.MaxUploadSize()),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.Register(app, handlers.Handlers{
		Upload:       handlers.NewUploadHandler(candidateService, cfg.Storage.MaxResumeSize),
		Candidate:    handlers.NewCandidateHandler(candidateService),
		Verification: handlers.NewVerificationHandler(workflow, cfg.Storage.MaxDocumentSize),
		UploadLimit:  uploadLimit,
	})

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "TraqCheck Candidate Onboarding API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/candidates/upload",
				"GET /api/v1/candidates",
				"GET /api/v1/candidates/:id",
				"DELETE /api/v1/candidates/:id/extraction",
				"POST /api/v1/candidates/:id/request-documents",
				"POST /api/v1/candidates/:id/submit-documents",
				"GET /api/v1/documents/:id",
				"GET /api/v1/stats",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	worker.Stop()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := handlers.StatusFor(err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
