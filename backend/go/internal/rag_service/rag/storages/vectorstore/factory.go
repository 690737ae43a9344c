package vectorstore

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"context"
	"fmt"

	"PDFChat/backend/go/internal/database/milvus"
	"PDFChat/backend/go/internal/database/postgres"
	"PDFChat/backend/go/pkg/logger"
)

// New returns the VectorStore selected by cfg.VectorStore.Backend.
func New(ctx context.Context, cfg *config.AppConfig, embedder interfaces.EmbeddingModel, log *logger.Logger) (interfaces.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case "", "chromem":
		return NewChromemStore(cfg.Pipeline.StoragePath, cfg.VectorStore.Compress, embedder, log)
	case "milvus":
		c, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
		if err != nil {
			return nil, err
		}
		return NewMilvusStore(c, embedder, log)
	case "pgvector":
		pool, err := postgres.GetPool(ctx, &cfg.Databases.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPgvectorStore(ctx, pool, embedder, log)
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s", cfg.VectorStore.Backend)
	}
}
