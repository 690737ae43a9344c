package httpmiddleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"PDFChat/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogger_TraceIDReachesHandler(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithOutput(logrus.InfoLevel, &buf)
	t.Cleanup(func() { logger.Init(logrus.InfoLevel) })

	var seen string
	h := RequestLogger(logger.New("test", "", ""))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", w.Header().Get(TraceHeader))
	assert.Contains(t, buf.String(), `"trace_id":"abc"`)
}

func TestRequestLogger_GeneratesTraceID(t *testing.T) {
	var seen string
	h := RequestLogger(logger.New("test", "", ""))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.TraceIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(TraceHeader))
}
