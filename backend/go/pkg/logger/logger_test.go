package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"PDFChat/backend/go/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(logrus.InfoLevel, &buf)
	t.Cleanup(func() { Init(logrus.InfoLevel) })

	log := New("RAGService", "trace-1", "")
	log.WithRequest(models.RequestInfo{Method: "POST", Path: "/ask"}).Info("handled")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "handled", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "RAGService", line["service_name"])
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Contains(t, line, "timestamp")
	assert.Contains(t, line, "request_info")
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(logrus.InfoLevel, &buf)
	t.Cleanup(func() { Init(logrus.InfoLevel) })

	parent := New("RAGService", "", "")
	_ = parent.WithField("collection", "resume")
	parent.Info("plain")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "collection")
}

func TestInitFromString(t *testing.T) {
	t.Cleanup(func() { Init(logrus.InfoLevel) })

	require.NoError(t, InitFromString("debug"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	assert.Error(t, InitFromString("loud"))
}

func TestLogger_ForContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(logrus.InfoLevel, &buf)
	t.Cleanup(func() { Init(logrus.InfoLevel) })

	base := New("RAGService", "", "")
	assert.Same(t, base, base.ForContext(context.Background()))

	ctx := ContextWithTraceID(context.Background(), "trace-7")
	assert.Equal(t, "trace-7", TraceIDFromContext(ctx))
	base.ForContext(ctx).Info("traced")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "trace-7", line["trace_id"])
}
