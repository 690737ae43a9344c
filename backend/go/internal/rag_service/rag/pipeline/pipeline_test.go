package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/loaders"
	"PDFChat/backend/go/internal/rag_service/rag/ragtest"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"PDFChat/backend/go/internal/rag_service/rag/splitters"
	"PDFChat/backend/go/internal/rag_service/rag/storages/vectorstore"
	"PDFChat/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = "Intro paragraph.\n \nBody paragraph about internships at Acme and Globex.\n \nConclusion."

func writeResume(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(resumeText), 0o644))
	return path
}

func newChromem(t *testing.T, emb interfaces.EmbeddingModel) interfaces.VectorStore {
	t.Helper()
	s, err := vectorstore.NewChromemStore(t.TempDir(), false, emb, testLog())
	require.NoError(t, err)
	return s
}

func testLog() *logger.Logger {
	return logger.New("test", "", "")
}

func TestIndexingPipeline_CreateThenLoad(t *testing.T) {
	ctx := context.Background()
	emb := &ragtest.FakeEmbedder{}
	p := NewIndexingPipeline(splitters.NewParagraphSplitter(), newChromem(t, emb), testLog())
	path := writeResume(t)

	res, err := p.Run(ctx, loaders.NewTxtLoader(), path, "resume")
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, 3, res.ChunkCount)
	assert.Equal(t, 1, emb.Calls())

	res, err = p.Run(ctx, loaders.NewTxtLoader(), path, "resume")
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, res.Status)
	assert.Equal(t, 3, res.ChunkCount)
	// Loading does not embed the chunks again.
	assert.Equal(t, 1, emb.Calls())
}

func TestIndexingPipeline_LoaderFailure(t *testing.T) {
	p := NewIndexingPipeline(splitters.NewParagraphSplitter(), newChromem(t, &ragtest.FakeEmbedder{}), testLog())

	res, err := p.Run(context.Background(), loaders.NewTxtLoader(), filepath.Join(t.TempDir(), "missing.txt"), "missing")
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestIndexingPipeline_EmbeddingFailure(t *testing.T) {
	emb := &ragtest.FakeEmbedder{Err: ragtest.ErrFake}
	p := NewIndexingPipeline(splitters.NewParagraphSplitter(), newChromem(t, emb), testLog())

	res, err := p.Run(context.Background(), loaders.NewTxtLoader(), writeResume(t), "resume")
	require.ErrorIs(t, err, ragtest.ErrFake)
	assert.Equal(t, StatusFailed, res.Status)
}

// racingStore reports a missing collection but loses the Create race.
type racingStore struct {
	interfaces.VectorStore
	loads int
}

func (r *racingStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (r *racingStore) Create(context.Context, string, []string) (interfaces.Collection, error) {
	return nil, vectorstore.ErrCollectionExists
}

func (r *racingStore) Load(_ context.Context, name string) (interfaces.Collection, error) {
	r.loads++
	return stubCollection{name: name, count: 7}, nil
}

type stubCollection struct {
	name  string
	count int
}

func (s stubCollection) Name() string                       { return s.name }
func (s stubCollection) Count(context.Context) (int, error) { return s.count, nil }
func (s stubCollection) Query(context.Context, string, int) ([]*schema.Document, error) {
	return nil, errors.New("not used")
}

func TestIndexingPipeline_ConcurrentCreateFallsBackToLoad(t *testing.T) {
	store := &racingStore{}
	p := NewIndexingPipeline(splitters.NewParagraphSplitter(), store, testLog())

	res, err := p.Run(context.Background(), loaders.NewTxtLoader(), writeResume(t), "resume")
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, res.Status)
	assert.Equal(t, 7, res.ChunkCount)
	assert.Equal(t, 1, store.loads)
}

func TestNewRetrievalPipeline_Range(t *testing.T) {
	_, err := NewRetrievalPipeline(0, testLog())
	assert.ErrorIs(t, err, ErrInvalidNResults)
	_, err = NewRetrievalPipeline(21, testLog())
	assert.ErrorIs(t, err, ErrInvalidNResults)
	_, err = NewRetrievalPipeline(20, testLog())
	assert.NoError(t, err)
}

func TestEndToEnd_WhichCompanies(t *testing.T) {
	ctx := context.Background()
	emb := &ragtest.FakeEmbedder{}
	llm := &ragtest.FakeLLM{Reply: "You interned at Acme and Globex."}

	indexer := NewIndexingPipeline(splitters.NewParagraphSplitter(), newChromem(t, emb), testLog())
	res, err := indexer.Run(ctx, loaders.NewTxtLoader(), writeResume(t), "resume")
	require.NoError(t, err)

	retriever, err := NewRetrievalPipeline(1, testLog())
	require.NoError(t, err)
	docs, err := retriever.Run(ctx, res.Collection, "Which companies?")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Body paragraph about internships at Acme and Globex.", docs[0].Text)

	answer, err := NewQAPipeline(llm, testLog()).Run(ctx, "Which companies?", docs)
	require.NoError(t, err)
	assert.Equal(t, "You interned at Acme and Globex.", answer)

	prompts := llm.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "QUESTION: 'Which companies?'")
	assert.Contains(t, prompts[0], "PASSAGE: 'Body paragraph about internships at Acme and Globex.'")
}

func TestQAPipeline_JoinsPassagesWithoutSeparator(t *testing.T) {
	llm := &ragtest.FakeLLM{}
	docs := []*schema.Document{{Text: "first."}, {Text: "second."}}

	_, err := NewQAPipeline(llm, testLog()).Run(context.Background(), "q", docs)
	require.NoError(t, err)
	assert.True(t, strings.Contains(llm.Prompts()[0], "PASSAGE: 'first.second.'"))
}

func TestQAPipeline_LLMError(t *testing.T) {
	llm := &ragtest.FakeLLM{Err: ragtest.ErrFake}
	_, err := NewQAPipeline(llm, testLog()).Run(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ragtest.ErrFake)
}
