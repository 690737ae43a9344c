package loaders

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// ParseError reports a file that exists but could not be read as a PDF.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse pdf %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PdfLoader implements the Loader interface for reading PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// pageSource is the subset of a parsed PDF the loader needs.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type pdfPages struct {
	r *pdf.Reader
}

func (p pdfPages) NumPage() int { return p.r.NumPage() }

func (p pdfPages) PageText(i int) (string, error) {
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	return page.GetPlainText(fonts)
}

// Load reads a PDF file and returns a single Document whose text is the
// concatenation of every page's plain text, in page order, with no separator.
func (l *PdfLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open pdf %s: %w", filepath.Base(path), err)
		}
		return nil, &ParseError{File: filepath.Base(path), Err: err}
	}
	defer f.Close()

	src := pdfPages{r: r}
	text, err := extractText(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &ParseError{File: filepath.Base(path), Err: err}
	}

	doc := &schema.Document{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName:  filepath.Base(path),
			schema.MetadataKeyPageCount: src.NumPage(),
		},
	}
	return []*schema.Document{doc}, nil
}

func extractText(ctx context.Context, src pageSource) (string, error) {
	var sb strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
