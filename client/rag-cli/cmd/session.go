package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ragclient "PDFChat/backend/go/pkg/http"
)

func sessionPath() (string, error) {
	if sessionFile != "" {
		return sessionFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rag-cli", "session"), nil
}

func loadSession(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func saveSession(path, id string) error {
	if id == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(id+"\n"), 0o600)
}

// newClient returns a client bound to the remembered session, and a func
// that persists whatever session the server ends up assigning.
func newClient() (*ragclient.Client, func() error, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, nil, err
	}
	id, err := loadSession(path)
	if err != nil {
		return nil, nil, err
	}
	c := ragclient.NewClient(serverURL, ragclient.WithSession(id))
	return c, func() error { return saveSession(path, c.SessionID()) }, nil
}
