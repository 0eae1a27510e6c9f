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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"resumio/resume-analyzer/internal/config"
	"resumio/resume-analyzer/internal/handlers"
	"resumio/resume-analyzer/internal/middleware"
	"resumio/resume-analyzer/internal/repositories"
	"resumio/resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	historyRepo := repositories.NewHistoryRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	progress := services.NewProgressBroadcaster()
	retainer := services.NewHistoryRetainer(historyRepo, cfg.Analysis.HistoryLimit)

	// The resume index is optional
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		indexer services.ResumeIndexer
		worker  services.Worker
	)
	if cfg.IndexEnabled() {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant initialized successfully")

		indexer = services.NewResumeIndexer(geminiService, qdrantService, services.NewTextChunker(1000, 200))
		worker = services.NewWorker(indexer, cfg.Worker.Concurrency, cfg.Worker.QueueSize)
		worker.Start(ctx)
	} else {
		log.Println("⚠️  QDRANT_URL not set, resume search disabled")
	}

	analyzer := services.NewAnalyzerService(
		storageService,
		services.NewPDFParserService(),
		services.NewOCRService(cfg.OCR.URL, cfg.OCR.Timeout),
		services.NewContentGate(),
		services.NewScorerService(geminiService, cfg.Gemini.Timeout),
		services.NewResponseParser(services.NewJSONRepairer()),
		retainer,
		progress,
		worker,
		services.AnalyzerOptions{
			MaxFileSize:        cfg.Storage.MaxFileSize,
			MaxPages:           cfg.Analysis.MaxPages,
			ProgressCloseDelay: cfg.Analysis.ProgressCloseDelay,
		},
	)
	log.Println("✅ Analyzer service initialized")

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(analyzer)
	progressHandler := handlers.NewProgressHandler(progress)
	historyHandler := handlers.NewHistoryHandler(retainer, historyRepo, indexer)
	log.Println("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:     "Resume Analyzer API",
		ReadTimeout: 30 * time.Second,
		// Leaves room for the multipart envelope; the pipeline enforces the file limit
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 2,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.FrontendURL,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handlers.SessionHeader,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	api := app.Group("/api", auth)

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/analyze/progress/:sessionId", progressHandler.HandleProgress)
	api.Get("/user/history", historyHandler.HandleList)
	api.Get("/user/history/search", historyHandler.HandleSearch)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		if worker != nil {
			worker.Stop()
		}
		cancel()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
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
