package splitters

import (
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/schema"
	"context"
	"strconv"
	"strings"
)

// ParagraphDelimiter separates paragraphs in text extracted from PDFs:
// a blank line holding a single space.
const ParagraphDelimiter = "\n \n"

// ParagraphSplitter implements the Splitter interface by cutting text on ParagraphDelimiter.
type ParagraphSplitter struct {
	delimiter string
}

// NewParagraphSplitter creates a splitter using ParagraphDelimiter.
func NewParagraphSplitter() *ParagraphSplitter {
	return &ParagraphSplitter{delimiter: ParagraphDelimiter}
}

// SplitText splits text on the delimiter and drops empty segments, keeping source order.
func (s *ParagraphSplitter) SplitText(text string) []string {
	parts := strings.Split(text, s.delimiter)
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

// Split splits every input document and numbers the resulting chunks from zero
// across the whole input. Chunk IDs are the positions as decimal strings.
func (s *ParagraphSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var chunks []*schema.Document
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, text := range s.SplitText(doc.Text) {
			idx := len(chunks)
			meta := copyMetadata(doc.Metadata)
			meta[schema.MetadataKeyChunkIndex] = idx
			chunks = append(chunks, &schema.Document{
				ID:       strconv.Itoa(idx),
				Text:     text,
				Metadata: meta,
			})
		}
	}
	return chunks, nil
}

// copyMetadata creates a shallow copy of a metadata map.
func copyMetadata(original map[string]interface{}) map[string]interface{} {
	newMap := make(map[string]interface{}, len(original)+1)
	for k, v := range original {
		newMap[k] = v
	}
	return newMap
}

// compile-time check to ensure ParagraphSplitter implements the Splitter interface
var _ interfaces.Splitter = (*ParagraphSplitter)(nil)
