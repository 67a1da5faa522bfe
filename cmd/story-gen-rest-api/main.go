// cmd/story-gen-rest-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/JayHzn/ai-story-generator/internal/api/rest/v1"
	"github.com/JayHzn/ai-story-generator/internal/app"
	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/collector"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/config"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"
	"github.com/gin-contrib/cors"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../../configs/rest-app.yaml"
	}

	restConfig, err := config.InitializeRestConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize logger
	if err := logger.InitLogger(&restConfig.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.GetLogger()
	if err != nil {
		return fmt.Errorf("failed to get logger: %w", err)
	}

	// Initialize application dependencies
	deps, err := initializeDependencies(restConfig, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	// Setup and start server with graceful shutdown
	return startServerWithGracefulShutdown(restConfig, deps, log)
}

// appDependencies holds all initialized application components
type appDependencies struct {
	services *appServices
}

type appServices struct {
	generation     textgen.GenerationService
	modelMetadata  textgen.MetadataService
	corpusMetadata corpus.MetadataService
	collector      corpus.CollectorService
	annotation     corpus.AnnotationService
}

// initializeDependencies sets up all application components
func initializeDependencies(cfg *config.RestConfig, log logger.Logger) (*appDependencies, error) {
	// Initialize database
	db, err := persistence.NewDBConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}

	// Run migrations
	if err := db.AutoMigrate(&models.DocumentModel{}, &models.AnnotationModel{}, &models.ModelMetaModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info("Database migrations completed successfully")

	// Initialize repositories
	documentRepo, err := persistence.NewGormDocumentRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create document repository: %w", err)
	}

	annotationRepo, err := persistence.NewGormAnnotationRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation repository: %w", err)
	}

	modelRepo, err := persistence.NewGormModelRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create model repository: %w", err)
	}

	// Initialize services
	services, err := initializeApplicationServices(cfg, documentRepo, annotationRepo, modelRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &appDependencies{services: services}, nil
}

// initializeApplicationServices sets up all application services
func initializeApplicationServices(
	cfg *config.RestConfig,
	documentRepo corpus.DocumentRepository,
	annotationRepo corpus.AnnotationRepository,
	modelRepo textgen.ModelRepository,
	log logger.Logger,
) (*appServices, error) {
	generationService, err := app.NewGenerationService(cfg.Model.CheckpointPath, cfg.Model.TokenizerPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	modelMetadataService, err := app.NewModelMetadataService(modelRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create model metadata service: %w", err)
	}

	corpusMetadataService, err := app.NewCorpusMetadataService(documentRepo, annotationRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus metadata service: %w", err)
	}

	fetcher, err := collector.NewFetcher(cfg.Collector.UserAgent, time.Duration(cfg.Collector.TimeoutSeconds)*time.Second, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	collectorService, err := app.NewCollectorService(fetcher, documentRepo, cfg.Collector.Sources, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create collector service: %w", err)
	}

	annotationService, err := app.NewAnnotationService(documentRepo, annotationRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation service: %w", err)
	}

	log.Info("Application services initialized successfully")
	return &appServices{
		generation:     generationService,
		modelMetadata:  modelMetadataService,
		corpusMetadata: corpusMetadataService,
		collector:      collectorService,
		annotation:     annotationService,
	}, nil
}

// startServerWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func startServerWithGracefulShutdown(cfg *config.RestConfig, deps *appDependencies, log logger.Logger) error {
	// Setup router
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup API routes
	v1.SetupRoutes(r,
		deps.services.generation,
		deps.services.modelMetadata,
		deps.services.corpusMetadata,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}

	// Background context for the scheduled collector, canceled on shutdown
	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()

	if cfg.Collector.IntervalMinutes > 0 && len(cfg.Collector.Sources) > 0 {
		if err := startScheduledCollection(collectorCtx, cfg, deps, log); err != nil {
			return fmt.Errorf("failed to start scheduled collection: %w", err)
		}
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		log.Info("Received signal %v, initiating graceful shutdown", sig)
	}

	// Stop the scheduled collector before the server
	stopCollector()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

// startScheduledCollection runs the web collector on a fixed interval, annotating
// newly collected documents after each run.
func startScheduledCollection(ctx context.Context, cfg *config.RestConfig, deps *appDependencies, log logger.Logger) error {
	interval := time.Duration(cfg.Collector.IntervalMinutes) * time.Minute

	scheduler, err := collector.NewScheduler(interval, func(runCtx context.Context) {
		docs, err := deps.services.collector.CollectAll(runCtx)
		if err != nil {
			log.Error("scheduled collection failed ", err)
			return
		}
		for _, doc := range docs {
			if _, err := deps.services.annotation.Annotate(runCtx, doc.ID); err != nil {
				log.Error("failed to annotate collected document ", doc.ID, " ", err)
			}
		}
	}, log)
	if err != nil {
		return err
	}

	go func() {
		if err := scheduler.Start(ctx); err != nil {
			log.Error("collector scheduler stopped with error ", err)
		}
	}()

	log.Info("Scheduled collection enabled, interval ", interval)
	return nil
}
