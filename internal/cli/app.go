package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/relaymind/knowledgecore/internal/config"
	"github.com/relaymind/knowledgecore/internal/embedding"
	"github.com/relaymind/knowledgecore/internal/extract"
	"github.com/relaymind/knowledgecore/internal/gemini"
	"github.com/relaymind/knowledgecore/internal/openai"
	"github.com/relaymind/knowledgecore/internal/repository"
	"github.com/relaymind/knowledgecore/internal/service"
	"github.com/relaymind/knowledgecore/internal/storage"
)

// app bundles the wired services the direct commands run against. It is the
// same wiring the server uses, minus the HTTP surface.
type app struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	docs      *service.DocumentService
	pipeline  *service.IngestionPipeline
	crawler   *service.CrawlerService
	youtube   *service.YouTubeService
	assembler *service.ContextAssembler
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	embedClient, geminiClient, err := buildProviders(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
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
			pool.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		archiver = s3Client
	}

	docRepo := repository.NewDocumentRepository(pool)

	chunkCfg := service.ChunkConfig{MaxLength: cfg.ChunkMaxLength, Overlap: cfg.ChunkOverlap}
	docs := service.NewDocumentService(docRepo, embedClient, cfg.MatchThreshold)

	var extractor *extract.Extractor
	if geminiClient != nil {
		extractor = extract.New(geminiClient, geminiClient)
	} else {
		extractor = extract.New(nil, nil)
	}

	a := &app{
		cfg:       cfg,
		pool:      pool,
		docs:      docs,
		pipeline:  service.NewIngestionPipeline(extractor, docs, archiver, service.LogSink{}, chunkCfg),
		assembler: service.NewContextAssembler(docs, cfg.ContextLimit),
	}
	if geminiClient != nil {
		a.crawler = service.NewCrawlerService(nil, geminiClient, docs, chunkCfg)
		a.youtube = service.NewYouTubeService(geminiClient, docs, chunkCfg)
	}
	return a, nil
}

func (a *app) Close() {
	a.pool.Close()
}

// buildProviders constructs the embedding client for the configured backend
// and, when Gemini keys are present, the capability client used for
// extraction and training.
func buildProviders(ctx context.Context, cfg *config.Config) (*embedding.Client, *gemini.Client, error) {
	var providers []embedding.Provider
	var err error
	switch cfg.EmbeddingProvider {
	case "openai":
		keys := cfg.OpenAIAPIKeys()
		if len(keys) == 0 {
			log.Println("no OpenAI API keys configured; embeddings will be zero vectors")
		}
		providers = openai.NewEmbeddingProviders(keys, goopenai.EmbeddingModel(cfg.EmbeddingModel), cfg.EmbeddingDimensions)
	default:
		keys := cfg.GeminiAPIKeys()
		if len(keys) == 0 {
			log.Println("no Gemini API keys configured; embeddings will be zero vectors")
		}
		providers, err = gemini.NewEmbeddingProviders(ctx, keys, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedding providers: %w", err)
		}
	}
	embedClient := embedding.NewClient(providers, cfg.EmbeddingDimensions)

	var geminiClient *gemini.Client
	if keys := cfg.GeminiAPIKeys(); len(keys) > 0 {
		geminiClient, err = gemini.New(ctx, keys, cfg.GenerationModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
	}
	return embedClient, geminiClient, nil
}
