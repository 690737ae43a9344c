package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")

	id, err := loadSession(path)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, saveSession(path, "abc-123"))
	id, err = loadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestSaveSession_EmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, saveSession(path, ""))
	assert.NoFileExists(t, path)
}

func TestSessionPath_FlagOverride(t *testing.T) {
	old := sessionFile
	t.Cleanup(func() { sessionFile = old })

	sessionFile = "/tmp/custom-session"
	path, err := sessionPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-session", path)
}
