package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/relaymind/knowledgecore/internal/api/handlers"
	"github.com/relaymind/knowledgecore/internal/config"
	"github.com/relaymind/knowledgecore/internal/extract"
	"github.com/relaymind/knowledgecore/internal/repository"
	"github.com/relaymind/knowledgecore/internal/server"
	"github.com/relaymind/knowledgecore/internal/service"
	"github.com/relaymind/knowledgecore/internal/storage"
	"github.com/relaymind/knowledgecore/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the knowledge API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.SentrySampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	embedClient, geminiClient, err := buildProviders(ctx, cfg)
	if err != nil {
		return err
	}
	log.Printf("embedding client ready (%s, %d keys, %d dimensions)",
		cfg.EmbeddingProvider, embedClient.KeyCount(), embedClient.Dimensions())
	if geminiClient == nil {
		log.Println("no Gemini API keys configured; model extraction and training are disabled")
	}

	var archiver service.SourceArchiver
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archiver = s3Client
	}

	docRepo := repository.NewDocumentRepository(pool)

	chunkCfg := service.ChunkConfig{MaxLength: cfg.ChunkMaxLength, Overlap: cfg.ChunkOverlap}
	docSvc := service.NewDocumentService(docRepo, embedClient, cfg.MatchThreshold)
	assembler := service.NewContextAssembler(docSvc, cfg.ContextLimit)

	var extractor *extract.Extractor
	if geminiClient != nil {
		extractor = extract.New(geminiClient, geminiClient)
	} else {
		extractor = extract.New(nil, nil)
	}

	pipeline := service.NewIngestionPipeline(extractor, docSvc, archiver, service.LogSink{}, chunkCfg)

	var trainHandler *handlers.TrainHandler
	if geminiClient != nil {
		crawler := service.NewCrawlerService(nil, geminiClient, docSvc, chunkCfg)
		youtube := service.NewYouTubeService(geminiClient, docSvc, chunkCfg)
		trainHandler = handlers.NewTrainHandler(crawler, youtube)
	} else {
		trainHandler = handlers.NewTrainHandler(&unconfiguredTrainer{}, &unconfiguredTrainer{})
	}

	routerCfg := server.RouterConfig{
		IngestHandler:   handlers.NewIngestHandler(pipeline),
		DocumentHandler: handlers.NewDocumentHandler(docSvc),
		ContextHandler:  handlers.NewContextHandler(assembler),
		TrainHandler:    trainHandler,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// unconfiguredTrainer rejects training requests when no model backend is
// configured.
type unconfiguredTrainer struct{}

func (unconfiguredTrainer) CrawlURL(ctx context.Context, containerID, ownerID, url string) (int, error) {
	return 0, fmt.Errorf("training not configured: GEMINI_API_KEY required")
}

func (unconfiguredTrainer) ProcessVideo(ctx context.Context, containerID, ownerID, url string) (int, error) {
	return 0, fmt.Errorf("training not configured: GEMINI_API_KEY required")
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database at version %d", version)
	}

	return nil
}
