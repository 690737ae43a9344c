package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(SessionHeader, "s-1")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": "s-1"})
	})
	mux.HandleFunc("/api/v1/documents", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		w.Header().Set(SessionHeader, r.Header.Get(SessionHeader))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result": UploadResult{Status: "created", Collection: hdr.Filename, ChunkCount: len(data)},
		})
	})
	mux.HandleFunc("/api/v1/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SessionHeader) != "s-1" {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "no document loaded"})
			return
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]string{"question": req["question"], "answer": "Acme"})
	})
	return httptest.NewServer(mux)
}

func TestClient_SessionFlow(t *testing.T) {
	srv := newFakeAPI(t)
	defer srv.Close()
	ctx := context.Background()

	c := NewClient(srv.URL + "/")
	assert.Empty(t, c.SessionID())

	id, err := c.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s-1", id)

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))
	res, err := c.Upload(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", res.Collection)
	assert.Equal(t, 5, res.ChunkCount)

	entry, err := c.Query(ctx, "Which companies?")
	require.NoError(t, err)
	assert.Equal(t, "Which companies?", entry.Question)
	assert.Equal(t, "Acme", entry.Answer)
}

func TestClient_APIError(t *testing.T) {
	srv := newFakeAPI(t)
	defer srv.Close()

	c := NewClient(srv.URL, WithSession("other"), WithHTTPClient(srv.Client()))
	_, err := c.Query(context.Background(), "q")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "no document loaded", apiErr.Message)
}

func TestClient_UploadMissingFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")
	_, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
