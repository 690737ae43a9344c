package api

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/models"
	"PDFChat/backend/go/internal/rag_service/service"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"PDFChat/backend/go/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the session ID for browser clients.
	SessionCookie = "rag_session"
	// SessionHeader carries the session ID for API clients.
	SessionHeader = "X-Session-ID"

	pdfMIME = "application/pdf"
)

// Handler 封装了所有 endpoint 的处理函数。
type Handler struct {
	sessions *service.Manager
	cfg      config.ServerConfig
	log      *logger.Logger
	checks   map[string]HealthCheck
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(sessions *service.Manager, cfg config.ServerConfig, log *logger.Logger) *Handler {
	return &Handler{sessions: sessions, cfg: cfg, log: log, checks: make(map[string]HealthCheck)}
}

// AddHealthCheck registers a dependency checked by /healthz. Call before serving.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// session resolves the caller's session from the header or cookie, creating
// one when neither names a live session. The ID is echoed back on both.
func (h *Handler) session(c *gin.Context) (*service.Session, error) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id, _ = c.Cookie(SessionCookie)
	}

	s, created, err := h.sessions.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if created {
		h.log.ForContext(c.Request.Context()).WithField("session_id", s.ID()).Info("session created")
	}
	c.Header(SessionHeader, s.ID())
	c.SetCookie(SessionCookie, s.ID(), int(h.cfg.SessionTTLDuration().Seconds()), "/", "", false, true)
	return s, nil
}

// saveUpload checks the multipart file is a PDF within the size limit and
// writes it under the session's upload directory.
func (h *Handler) saveUpload(c *gin.Context, sessionID string) (string, error) {
	limit := h.cfg.MaxUploadMB << 20
	if limit > 0 {
		// Leave room for the multipart envelope; the file size is checked below.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return "", ErrUploadTooLarge
		}
		return "", fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	if limit > 0 && file.Size > limit {
		return "", ErrUploadTooLarge
	}
	if err := checkPDF(file); err != nil {
		return "", err
	}

	name := filepath.Base(file.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	dir := filepath.Join(h.cfg.UploadDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return dst, nil
}

func checkPDF(file *multipart.FileHeader) error {
	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("failed to detect upload type: %w", err)
	}
	if !mt.Is(pdfMIME) {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, mt.String())
	}
	return nil
}

// upload runs the shared upload flow for both the UI and the API.
func (h *Handler) upload(c *gin.Context, s *service.Session) (*service.UploadResult, error) {
	path, err := h.saveUpload(c, s.ID())
	if err != nil {
		return nil, err
	}
	return s.Upload(c.Request.Context(), path)
}

func (h *Handler) fail(c *gin.Context, err error) int {
	status := statusFor(err)
	log := h.log.ForContext(c.Request.Context()).WithError(models.ErrorInfo{Message: err.Error(), Type: http.StatusText(status), StatusCode: status})
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Warn("request rejected")
	}
	return status
}

// --- Web UI ---

type pageData struct {
	Collection string
	History    []models.ConversationEntry
	Error      string
	Notice     string
}

func (h *Handler) render(c *gin.Context, status int, s *service.Session, data pageData) {
	if s != nil {
		data.Collection = s.Collection()
		data.History = s.History()
	}
	c.HTML(status, "index.html", data)
}

// Index 渲染上传表单、提问框与历史记录。
func (h *Handler) Index(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.render(c, h.fail(c, err), nil, pageData{Error: err.Error()})
		return
	}
	h.render(c, http.StatusOK, s, pageData{})
}

// UploadForm 处理表单上传。
func (h *Handler) UploadForm(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.render(c, h.fail(c, err), nil, pageData{Error: err.Error()})
		return
	}
	res, err := h.upload(c, s)
	if err != nil {
		h.render(c, h.fail(c, err), s, pageData{Error: err.Error()})
		return
	}
	h.render(c, http.StatusOK, s, pageData{Notice: fmt.Sprintf("Document %q %s (%d chunks).", res.Collection, res.Status, res.ChunkCount)})
}

// AskForm 处理表单提问。
func (h *Handler) AskForm(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.render(c, h.fail(c, err), nil, pageData{Error: err.Error()})
		return
	}
	if _, err := s.Ask(c.Request.Context(), c.PostForm("question")); err != nil {
		h.render(c, h.fail(c, err), s, pageData{Error: err.Error()})
		return
	}
	h.render(c, http.StatusOK, s, pageData{})
}

// --- JSON API ---

// QueryRequest 定义了提问请求的 JSON 结构。
type QueryRequest struct {
	Question string `json:"question"`
}

func (h *Handler) jsonError(c *gin.Context, err error) {
	c.JSON(h.fail(c, err), gin.H{"error": err.Error()})
}

// CreateSession 创建一个新会话。
func (h *Handler) CreateSession(c *gin.Context) {
	s, err := h.sessions.Create()
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.Header(SessionHeader, s.ID())
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID()})
}

// UploadDocument 接收 multipart 上传的 PDF 并建立索引。
func (h *Handler) UploadDocument(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	res, err := h.upload(c, s)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID(), "result": res})
}

// Query 回答一个问题。
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.session(c)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	entry, err := s.Ask(c.Request.Context(), req.Question)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// History 返回当前会话的问答历史（从旧到新）。
func (h *Handler) History(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.ID(),
		"collection": s.Collection(),
		"history":    s.History(),
	})
}

// Healthz 用于存活检查，并探测已注册的外部依赖。
func (h *Handler) Healthz(c *gin.Context) {
	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "sessions": h.sessions.Len(), "dependencies": deps})
}
