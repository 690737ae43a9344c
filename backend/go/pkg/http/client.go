package http

import (
	"PDFChat/backend/go/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionHeader must match the header the RAG service reads and echoes.
const SessionHeader = "X-Session-ID"

// APIError is a non-2xx response from the RAG service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// UploadResult is the outcome of indexing an uploaded document.
type UploadResult struct {
	Status     string `json:"status"`
	Collection string `json:"collection"`
	ChunkCount int    `json:"chunk_count"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// History is a session's question and answer log.
type History struct {
	SessionID  string                     `json:"session_id"`
	Collection string                     `json:"collection"`
	History    []models.ConversationEntry `json:"history"`
}

// Client talks to the RAG service JSON API and remembers the session it was
// assigned.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessionID  string
}

// ClientOption defines a function for configuring a Client.
type ClientOption func(*Client)

// WithSession reuses an existing session ID.
func WithSession(id string) ClientOption {
	return func(c *Client) {
		c.sessionID = id
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		// Indexing a large PDF can take a while.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the current session ID, empty until the server assigns one.
func (c *Client) SessionID() string {
	return c.sessionID
}

// CreateSession asks the server for a fresh session and adopts it.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", nil, "", &out); err != nil {
		return "", err
	}
	c.sessionID = out.SessionID
	return out.SessionID, nil
}

// Upload sends the file at path to be indexed.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out struct {
		Result UploadResult `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/documents", body, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// Query asks a question about the session's current document.
func (c *Client) Query(ctx context.Context, question string) (*models.ConversationEntry, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, err
	}
	var out models.ConversationEntry
	if err := c.do(ctx, http.MethodPost, "/api/v1/query", bytes.NewReader(payload), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the session's question and answer log, oldest first.
func (c *Client) History(ctx context.Context) (*History, error) {
	var out History
	if err := c.do(ctx, http.MethodGet, "/api/v1/history", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.sessionID != "" {
		req.Header.Set(SessionHeader, c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(SessionHeader); id != "" {
		c.sessionID = id
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
