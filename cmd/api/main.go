package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/clipforge/clipforge/pkg/validator"

	"github.com/clipforge/clipforge/internal/adapter/handler"
	"github.com/clipforge/clipforge/internal/adapter/repository"
	"github.com/clipforge/clipforge/internal/infrastructure/cache"
	"github.com/clipforge/clipforge/internal/infrastructure/database"
	"github.com/clipforge/clipforge/internal/infrastructure/storage"
	"github.com/clipforge/clipforge/internal/usecase/curation"
	"github.com/clipforge/clipforge/internal/usecase/discovery"
	"github.com/clipforge/clipforge/internal/usecase/orchestrator"
	"github.com/clipforge/clipforge/internal/usecase/reframe"
	"github.com/clipforge/clipforge/internal/usecase/signals"
	"github.com/clipforge/clipforge/internal/usecase/subtitle"
	"github.com/clipforge/clipforge/internal/usecase/transcript"
	"github.com/clipforge/clipforge/pkg/config"
	"github.com/clipforge/clipforge/pkg/ffmpeg"
	"github.com/clipforge/clipforge/pkg/llm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	logger, err := zap.NewProduction()
	if cfg.Server.Environment != "production" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if err := database.Migrate(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Initialize Redis-backed status cache. Development machines without
	// Redis fall back to the in-process cache.
	log.Println("Connecting to Redis...")
	var statusCache orchestrator.StatusCache
	redisCache, err := cache.NewJobStatusCache(cfg, logger)
	if err != nil {
		if cfg.Server.Environment == "production" {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Redis unavailable (%v), using in-memory status cache", err)
		statusCache = cache.NewMemoryJobCache()
	} else {
		defer redisCache.Close()
		statusCache = redisCache
	}

	// Initialize object storage for rendered clips. Development machines
	// without MinIO keep rendered files on local disk.
	log.Println("Connecting to object storage...")
	var artifactStore orchestrator.ArtifactStore
	var fileStore handler.FileStore
	clipStorage, err := storage.NewClipStorage(&cfg.Storage)
	if err != nil {
		if cfg.Server.Environment == "production" {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		log.Printf("Object storage unavailable (%v), rendered clips stay in %s", err, cfg.Media.OutputDir)
	} else {
		artifactStore = clipStorage
		fileStore = clipStorage
	}

	// Repositories
	episodeRepo := repository.NewEpisodeRepository(db)
	utteranceRepo := repository.NewUtteranceRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Register episodes found in the media directory
	if cfg.Media.EpisodesDir != "" {
		scanner := discovery.NewScanner(episodeRepo, cfg.Media.EpisodesDir, logger)
		if n, err := scanner.Scan(context.Background()); err != nil {
			log.Printf("Episode discovery failed: %v", err)
		} else {
			log.Printf("Discovered %d episodes in %s", n, cfg.Media.EpisodesDir)
		}
	}

	// Pipeline components
	transcriptStore := transcript.NewStore(episodeRepo, utteranceRepo, logger)
	sourceFactory := transcript.NewFactory(cfg.Media.WhisperPath, logger)
	extractor := signals.NewExtractor(signals.DefaultConfig(), logger)

	chatClient := llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Temperature)
	curator := curation.NewPipeline(chatClient, curation.Options{
		MaxRetries:      cfg.Pipeline.LLMMaxRetries,
		ChunkChars:      cfg.Pipeline.ChunkChars,
		ChunkOverlapSec: cfg.Pipeline.ChunkOverlapSec,
	}, logger)

	runner := ffmpeg.NewExecutor(cfg.Media.FFmpegPath, cfg.Media.FFprobePath, logger)
	reframer := reframe.NewReframer(runner, nil, logger)
	subtitler := subtitle.NewRenderer(logger)

	// Orchestrator
	svc := orchestrator.NewService(cfg.Pipeline, cfg.Media, orchestrator.Deps{
		Episodes:    episodeRepo,
		Jobs:        jobRepo,
		Sources:     sourceFactory,
		Transcripts: transcriptStore,
		Signals:     extractor,
		Curation:    curator,
		Reframer:    reframer,
		Subtitles:   subtitler,
		Storage:     artifactStore,
		Prober:      runner,
		Cache:       statusCache,
		Logger:      logger,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	svc.StartSweeper(sweepCtx, 5*time.Minute)

	// Handlers and routes
	jobHandler := handler.NewJob(svc, fileStore, logger)
	episodeHandler := handler.NewEpisode(episodeRepo, transcriptStore, logger)

	router := handler.NewRouter(cfg, jobHandler, episodeHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		log.Printf("Environment: %s", cfg.Server.Environment)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
