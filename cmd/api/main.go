package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/features"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
	"alfredoptarigan/resume-screener/internal/training"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Env != "development", cfg.Server.Env == "development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	log.Info("database connected")

	candidateRepo := repositories.NewCandidateRepository(db)
	runRepo := repositories.NewTrainingRunRepository(db)

	// Model registry: the scoring path always has a model set, trained or
	// default.
	store := ml.NewArtifactStore(cfg.Models.ArtifactDir)
	registry := ml.NewRegistry(store)

	vocab := features.DefaultVocabulary()
	if cfg.Models.VocabularyPath != "" {
		vocab, err = features.LoadVocabulary(cfg.Models.VocabularyPath)
		if err != nil {
			log.Fatal("failed to load skill vocabulary", zap.Error(err))
		}
	}
	extractor := features.NewExtractor(vocab)

	var talentIndex services.TalentIndexService
	if cfg.Qdrant.Enabled {
		talentIndex, err = services.NewTalentIndexService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Models.EmbeddingDim,
		)
		if err != nil {
			log.Fatal("failed to initialize talent index", zap.Error(err))
		}
		if err := talentIndex.InitCollection(); err != nil {
			log.Fatal("failed to initialize talent index collection", zap.Error(err))
		}
		log.Info("talent index ready", zap.String("collection", cfg.Qdrant.Collection))
	}

	var summary services.SummaryService
	if cfg.Gemini.APIKey != "" {
		summary, err = services.NewSummaryService(cfg.Gemini.APIKey, cfg.Worker.RetryMaxAttempts)
		if err != nil {
			log.Fatal("failed to initialize summary service", zap.Error(err))
		}
		log.Info("summary service ready")
	}

	screening := services.NewScreeningService(
		candidateRepo,
		registry,
		extractor,
		cfg.Scoring.Weights,
		talentIndex,
		summary,
		log,
	)

	trainDefaults := training.DefaultConfig()
	trainDefaults.EmbeddingDim = cfg.Models.EmbeddingDim
	trainer := services.NewTrainerService(runRepo, store, registry, trainDefaults, log)

	worker := services.NewWorker(candidateRepo, screening, cfg.Worker.Concurrency, log)
	worker.Start(context.Background())

	screenHandler := handlers.NewScreenHandler(screening)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo, worker, talentIndex, registry)
	trainHandler := handlers.NewTrainHandler(trainer)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

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

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/screen", screenHandler.HandleScreen)
	api.Post("/candidates", candidateHandler.HandleCreate)
	api.Get("/candidates/:id", candidateHandler.HandleGetResult)
	api.Get("/candidates/:id/similar", candidateHandler.HandleGetSimilar)
	api.Post("/train", trainHandler.HandleTrain)
	api.Get("/train/:id", trainHandler.HandleGetRun)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/screen",
				"POST /api/v1/candidates",
				"GET /api/v1/candidates/:id",
				"GET /api/v1/candidates/:id/similar",
				"POST /api/v1/train",
				"GET /api/v1/train/:id",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
