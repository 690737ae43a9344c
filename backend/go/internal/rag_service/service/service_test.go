package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/rag_service/rag/loaders"
	"PDFChat/backend/go/internal/rag_service/rag/pipeline"
	"PDFChat/backend/go/internal/rag_service/rag/ragtest"
	"PDFChat/backend/go/internal/rag_service/rag/storages/vectorstore"
	"PDFChat/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = "Intro paragraph.\n \nBody paragraph about internships at Acme and Globex.\n \nConclusion."

type recordingArchive struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recordingArchive) Store(_ context.Context, path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.paths = append(r.paths, path)
	return "key/" + filepath.Base(path), nil
}

func newDeps(t *testing.T, llm *ragtest.FakeLLM, n int) Deps {
	t.Helper()
	log := logger.New("test", "", "")
	store, err := vectorstore.NewChromemStore(t.TempDir(), false, &ragtest.FakeEmbedder{}, log)
	require.NoError(t, err)
	return Deps{
		Pipeline:    config.PipelineConfig{NResults: n},
		VectorStore: store,
		LLM:         llm,
		Log:         log,
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSession_AskBeforeUpload(t *testing.T) {
	s, err := NewSession("s1", newDeps(t, &ragtest.FakeLLM{}, 3))
	require.NoError(t, err)

	_, err = s.Ask(context.Background(), "Which companies?")
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Empty(t, s.History())
}

func TestSession_EmptyQuestion(t *testing.T) {
	s, err := NewSession("s1", newDeps(t, &ragtest.FakeLLM{}, 3))
	require.NoError(t, err)

	_, err = s.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestSession_UploadAndAsk(t *testing.T) {
	ctx := context.Background()
	llm := &ragtest.FakeLLM{Reply: "Acme and Globex."}
	deps := newDeps(t, llm, 1)
	arc := &recordingArchive{}
	deps.Archive = arc

	s, err := NewSession("s1", deps)
	require.NoError(t, err)
	path := writeFile(t, "resume.txt", resumeText)

	res, err := s.Upload(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusCreated, res.Status)
	assert.Equal(t, "resume", res.Collection)
	assert.Equal(t, 3, res.ChunkCount)
	assert.Equal(t, "key/resume.txt", res.ArchiveKey)
	assert.Equal(t, []string{path}, arc.paths)
	assert.Equal(t, "resume", s.Collection())

	first, err := s.Ask(ctx, "Which companies?")
	require.NoError(t, err)
	assert.Equal(t, "Acme and Globex.", first.Answer)
	assert.Contains(t, llm.Prompts()[0], "PASSAGE: 'Body paragraph about internships at Acme and Globex.'")

	_, err = s.Ask(ctx, "Anything else?")
	require.NoError(t, err)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Which companies?", history[0].Question)
	assert.Equal(t, "Anything else?", history[1].Question)
	assert.Equal(t, "resume", history[0].Collection)
	assert.False(t, history[1].AskedAt.Before(history[0].AskedAt))
}

func TestSession_SecondUploadLoads(t *testing.T) {
	ctx := context.Background()
	deps := newDeps(t, &ragtest.FakeLLM{}, 3)
	path := writeFile(t, "resume.txt", resumeText)

	a, err := NewSession("a", deps)
	require.NoError(t, err)
	_, err = a.Upload(ctx, path)
	require.NoError(t, err)

	b, err := NewSession("b", deps)
	require.NoError(t, err)
	res, err := b.Upload(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusLoaded, res.Status)
}

func TestSession_ConfiguredCollectionName(t *testing.T) {
	deps := newDeps(t, &ragtest.FakeLLM{}, 3)
	deps.Pipeline.CollectionName = "fixed"
	s, err := NewSession("s", deps)
	require.NoError(t, err)

	res, err := s.Upload(context.Background(), writeFile(t, "resume.txt", resumeText))
	require.NoError(t, err)
	assert.Equal(t, "fixed", res.Collection)
}

func TestSession_ArchiveFailureIsNotFatal(t *testing.T) {
	deps := newDeps(t, &ragtest.FakeLLM{}, 3)
	deps.Archive = &recordingArchive{err: errors.New("bucket gone")}
	s, err := NewSession("s", deps)
	require.NoError(t, err)

	res, err := s.Upload(context.Background(), writeFile(t, "resume.txt", resumeText))
	require.NoError(t, err)
	assert.Empty(t, res.ArchiveKey)
}

func TestSession_UnsupportedFile(t *testing.T) {
	s, err := NewSession("s", newDeps(t, &ragtest.FakeLLM{}, 3))
	require.NoError(t, err)

	res, err := s.Upload(context.Background(), writeFile(t, "notes.docx", "x"))
	assert.ErrorIs(t, err, loaders.ErrUnsupportedFile)
	assert.Equal(t, pipeline.StatusFailed, res.Status)
	assert.Empty(t, s.Collection())
}

func TestSession_LLMFailureDoesNotAppend(t *testing.T) {
	ctx := context.Background()
	llm := &ragtest.FakeLLM{}
	s, err := NewSession("s", newDeps(t, llm, 3))
	require.NoError(t, err)
	_, err = s.Upload(ctx, writeFile(t, "resume.txt", resumeText))
	require.NoError(t, err)

	llm.Err = ragtest.ErrFake
	_, err = s.Ask(ctx, "Which companies?")
	assert.ErrorIs(t, err, ragtest.ErrFake)
	assert.Empty(t, s.History())
}

func TestManager_Sessions(t *testing.T) {
	m, err := NewManager(newDeps(t, &ragtest.FakeLLM{}, 3), 2, time.Hour)
	require.NoError(t, err)

	a, err := m.Create()
	require.NoError(t, err)
	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = m.Get("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	same, created, err := m.GetOrCreate(a.ID())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, a, same)

	_, created, err = m.GetOrCreate("")
	require.NoError(t, err)
	assert.True(t, created)

	_, err = m.Create()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound, "oldest session should be evicted")
}

func TestNewManager_InvalidNResults(t *testing.T) {
	_, err := NewManager(newDeps(t, &ragtest.FakeLLM{}, config.MaxNResults+1), 2, time.Hour)
	assert.ErrorIs(t, err, pipeline.ErrInvalidNResults)
}
