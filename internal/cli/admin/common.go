// Package admin contains the operator commands for the knowledge base.
package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/openai"
	"github.com/pitchlabs/coachkb/internal/repository"
	"github.com/pitchlabs/coachkb/internal/service"
	"github.com/pitchlabs/coachkb/internal/storage"
)

func getDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func newEmbeddingClient(cfg *config.Config) (*openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("COACHKB_OPENAI_API_KEY is not set")
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openai.ResolveEmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	}), nil
}

func newKnowledgeService(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*service.KnowledgeService, error) {
	embedder, err := newEmbeddingClient(cfg)
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	svc := service.NewKnowledgeService(docRepo, chunkRepo, searchRepo, embedder, txRunner)

	if cfg.HasS3() {
		archive, err := storage.NewArchive(ctx, storage.ArchiveConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    cfg.S3Endpoint != "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize archive: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure archive bucket: %w", err)
		}
		svc.WithArchive(archive)
	}

	return svc, nil
}

func newSearchService(cfg *config.Config, pool *pgxpool.Pool) (*service.SearchService, error) {
	embedder, err := newEmbeddingClient(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewSearchService(repository.NewSearchRepository(pool), embedder), nil
}
