package service

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/loaders"
	"PDFChat/backend/go/internal/rag_service/rag/pipeline"
	"PDFChat/backend/go/internal/rag_service/rag/splitters"
	"PDFChat/backend/go/internal/rag_service/rag/storages/archive"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"PDFChat/backend/go/internal/models"
	"PDFChat/backend/go/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoDocument is returned by Ask before any document has been uploaded.
	ErrNoDocument = errors.New("no document loaded, upload a PDF first")
	// ErrEmptyQuestion is returned by Ask for a blank question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Deps are the shared components every session runs against.
type Deps struct {
	Pipeline    config.PipelineConfig
	VectorStore interfaces.VectorStore
	LLM         interfaces.LLM
	// Archive may be nil, in which case uploads are not archived.
	Archive archive.Archive
	Log     *logger.Logger
}

func (d Deps) nResults() int {
	if d.Pipeline.NResults == 0 {
		return config.DefaultNResults
	}
	return d.Pipeline.NResults
}

// UploadResult describes the collection a session is now bound to.
type UploadResult struct {
	Status     pipeline.IndexStatus `json:"status"`
	Collection string               `json:"collection"`
	ChunkCount int                  `json:"chunk_count"`
	ArchiveKey string               `json:"archive_key,omitempty"`
}

// Session is one user's conversation over one document. Its actions run one
// at a time. History only grows.
type Session struct {
	id string

	mu         sync.Mutex
	collection interfaces.Collection
	history    []models.ConversationEntry

	indexer   *pipeline.IndexingPipeline
	retriever *pipeline.RetrievalPipeline
	qa        *pipeline.QAPipeline
	archive   archive.Archive
	pipeCfg   config.PipelineConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewSession builds a session with its own pipelines over deps.
func NewSession(id string, deps Deps) (*Session, error) {
	log := deps.Log.WithField("session_id", id)

	retriever, err := pipeline.NewRetrievalPipeline(deps.nResults(), log)
	if err != nil {
		return nil, err
	}
	arc := deps.Archive
	if arc == nil {
		arc = archive.Nop{}
	}

	return &Session{
		id:        id,
		indexer:   pipeline.NewIndexingPipeline(splitters.NewParagraphSplitter(), deps.VectorStore, log),
		retriever: retriever,
		qa:        pipeline.NewQAPipeline(deps.LLM, log),
		archive:   arc,
		pipeCfg:   deps.Pipeline,
		log:       log,
		now:       time.Now,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Upload indexes the file at path and binds the session to the resulting
// collection. The collection name is the configured one, or the file's base
// name without extension. Archiving runs alongside indexing and its failure
// is only logged. A failed upload keeps the previously bound collection.
func (s *Session) Upload(ctx context.Context, path string) (*UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loader, err := loaders.ForPath(path)
	if err != nil {
		return &UploadResult{Status: pipeline.StatusFailed}, err
	}
	name := s.pipeCfg.CollectionName
	if name == "" {
		name = loaders.CollectionName(path)
	}

	var (
		res        *pipeline.IndexResult
		archiveKey string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		key, err := s.archive.Store(gctx, path)
		if err != nil {
			s.log.ForContext(ctx).Warn(fmt.Sprintf("Failed to archive upload: %v", err))
			return nil
		}
		archiveKey = key
		return nil
	})
	g.Go(func() error {
		var err error
		res, err = s.indexer.Run(gctx, loader, path, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return &UploadResult{Status: pipeline.StatusFailed, Collection: name}, err
	}

	s.collection = res.Collection
	return &UploadResult{
		Status:     res.Status,
		Collection: res.Name,
		ChunkCount: res.ChunkCount,
		ArchiveKey: archiveKey,
	}, nil
}

// Ask answers question from the bound collection and appends the exchange to history.
func (s *Session) Ask(ctx context.Context, question string) (models.ConversationEntry, error) {
	if strings.TrimSpace(question) == "" {
		return models.ConversationEntry{}, ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection == nil {
		return models.ConversationEntry{}, ErrNoDocument
	}

	docs, err := s.retriever.Run(ctx, s.collection, question)
	if err != nil {
		return models.ConversationEntry{}, err
	}
	answer, err := s.qa.Run(ctx, question, docs)
	if err != nil {
		return models.ConversationEntry{}, err
	}

	entry := models.ConversationEntry{
		Question:   question,
		Answer:     answer,
		AskedAt:    s.now(),
		Collection: s.collection.Name(),
	}
	s.history = append(s.history, entry)
	return entry, nil
}

// History returns a copy of the conversation, oldest first.
func (s *Session) History() []models.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationEntry{}, s.history...)
}

// Collection returns the bound collection name, or "" before the first upload.
func (s *Session) Collection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection == nil {
		return ""
	}
	return s.collection.Name()
}
