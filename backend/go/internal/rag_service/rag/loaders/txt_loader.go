package loaders

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var errInvalidUTF8 = errors.New("file is not valid UTF-8")

// TxtLoader reads UTF-8 text files. Windows line endings are normalized to
// "\n" so the paragraph delimiter matches regardless of origin.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

func (l *TxtLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if !utf8.Valid(raw) {
		return nil, &ParseError{File: filepath.Base(path), Err: errInvalidUTF8}
	}

	return []*schema.Document{{
		ID:   uuid.NewString(),
		Text: strings.ReplaceAll(string(raw), "\r\n", "\n"),
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName: filepath.Base(path),
		},
	}}, nil
}

var _ interfaces.Loader = (*TxtLoader)(nil)
