package pipeline

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/prompt"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"fmt"
	"strings"

	"PDFChat/backend/go/pkg/logger"
)

// QAPipeline is responsible for generating an answer based on a query and retrieved documents.
type QAPipeline struct {
	llm interfaces.LLM
	log *logger.Logger
}

// NewQAPipeline creates a new QAPipeline.
func NewQAPipeline(llm interfaces.LLM, log *logger.Logger) *QAPipeline {
	return &QAPipeline{
		llm: llm,
		log: log,
	}
}

// Run joins the documents into one passage, builds the prompt and calls the LLM.
func (p *QAPipeline) Run(ctx context.Context, query string, documents []*schema.Document) (string, error) {
	log := p.log.ForContext(ctx)
	log.Info(fmt.Sprintf("Building prompt with %d documents", len(documents)))

	// 1. Build the prompt
	passage := strings.Join(schema.Texts(documents), "")
	text := prompt.Build(query, passage)

	// 2. Call the LLM to generate the answer
	answer, err := p.llm.Generate(ctx, text)
	if err != nil {
		log.Error(fmt.Sprintf("LLM failed to generate answer: %v", err))
		return "", err
	}

	log.Info("Successfully generated answer from LLM.")
	return answer, nil
}
