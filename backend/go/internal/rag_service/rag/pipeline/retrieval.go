package pipeline

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"errors"
	"fmt"

	"PDFChat/backend/go/pkg/logger"
)

// ErrInvalidNResults is returned when n is outside [1, config.MaxNResults].
var ErrInvalidNResults = errors.New("n results out of range")

// RetrievalPipeline fetches the chunks most relevant to a query.
type RetrievalPipeline struct {
	nResults int
	log      *logger.Logger
}

// NewRetrievalPipeline creates a RetrievalPipeline that asks for nResults chunks per query.
func NewRetrievalPipeline(nResults int, log *logger.Logger) (*RetrievalPipeline, error) {
	if nResults < 1 || nResults > config.MaxNResults {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNResults, nResults)
	}
	return &RetrievalPipeline{nResults: nResults, log: log}, nil
}

// Run returns at most nResults chunks from col, best first.
func (p *RetrievalPipeline) Run(ctx context.Context, col interfaces.Collection, query string) ([]*schema.Document, error) {
	log := p.log.ForContext(ctx).WithField("collection", col.Name())

	docs, err := col.Query(ctx, query, p.nResults)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to query collection: %v", err))
		return nil, err
	}

	log.Info(fmt.Sprintf("Retrieved %d documents", len(docs)))
	return docs, nil
}
