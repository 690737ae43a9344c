package pipeline

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"PDFChat/backend/go/internal/rag_service/rag/storages/vectorstore"
	"context"
	"errors"
	"fmt"

	"PDFChat/backend/go/pkg/logger"
)

// IndexStatus reports how an upload obtained its collection.
type IndexStatus string

const (
	StatusCreated IndexStatus = "created"
	StatusLoaded  IndexStatus = "loaded"
	StatusFailed  IndexStatus = "failed"
)

// IndexResult is the outcome of one IndexingPipeline run.
type IndexResult struct {
	Status     IndexStatus
	Name       string
	Collection interfaces.Collection
	// ChunkCount is the number of chunks produced by the splitter, or the stored
	// count when an existing collection was loaded.
	ChunkCount int
}

// IndexingPipeline orchestrates loading, splitting and storing a document
// as a named collection.
type IndexingPipeline struct {
	splitter    interfaces.Splitter
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(splitter interfaces.Splitter, vectorStore interfaces.VectorStore, log *logger.Logger) *IndexingPipeline {
	return &IndexingPipeline{
		splitter:    splitter,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run loads path, splits it and creates the collection name, or loads it if it
// already exists. The returned result always carries a status, even on error.
func (p *IndexingPipeline) Run(ctx context.Context, loader interfaces.Loader, path, name string) (*IndexResult, error) {
	log := p.log.ForContext(ctx).WithField("collection", name)
	failed := &IndexResult{Status: StatusFailed, Name: name}

	log.Info(fmt.Sprintf("Starting indexing for path: %s", path))

	// 1. Load the data
	docs, err := loader.Load(ctx, path)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to load data: %v", err))
		return failed, err
	}

	// 2. Split documents into chunks
	chunks, err := p.splitter.Split(ctx, docs)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to split documents: %v", err))
		return failed, err
	}
	log.Info(fmt.Sprintf("Split into %d chunks", len(chunks)))

	// 3. Reuse an existing collection
	exists, err := p.vectorStore.Exists(ctx, name)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to check collection: %v", err))
		return failed, err
	}
	if exists {
		return p.load(ctx, name, log)
	}

	// 4. Create and embed
	col, err := p.vectorStore.Create(ctx, name, schema.Texts(chunks))
	if errors.Is(err, vectorstore.ErrCollectionExists) {
		log.Warn("Collection was created concurrently, loading it instead")
		return p.load(ctx, name, log)
	}
	if err != nil {
		log.Error(fmt.Sprintf("Failed to create collection: %v", err))
		return failed, err
	}

	log.Info(fmt.Sprintf("Successfully finished indexing for: %s", path))
	return &IndexResult{Status: StatusCreated, Name: name, Collection: col, ChunkCount: len(chunks)}, nil
}

func (p *IndexingPipeline) load(ctx context.Context, name string, log *logger.Logger) (*IndexResult, error) {
	failed := &IndexResult{Status: StatusFailed, Name: name}

	col, err := p.vectorStore.Load(ctx, name)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to load collection: %v", err))
		return failed, err
	}
	count, err := col.Count(ctx)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to count collection: %v", err))
		return failed, err
	}

	log.Info(fmt.Sprintf("Loaded existing collection with %d chunks", count))
	return &IndexResult{Status: StatusLoaded, Name: name, Collection: col, ChunkCount: count}, nil
}
