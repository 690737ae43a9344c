package loaders

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is returned by ForPath for extensions without a loader.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ForPath picks a loader by file extension.
func ForPath(path string) (interfaces.Loader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return NewPdfLoader(), nil
	case ".txt":
		return NewTxtLoader(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFile, ext)
	}
}

// CollectionName derives a collection name from a file path: the base name
// with its extension stripped.
func CollectionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
