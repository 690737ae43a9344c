package splitters

import (
	"context"
	"strings"
	"testing"

	"PDFChat/backend/go/internal/rag_service/rag/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"three paragraphs", "Intro paragraph.\n \nBody paragraph about internships at Acme and Globex.\n \nConclusion.",
			[]string{"Intro paragraph.", "Body paragraph about internships at Acme and Globex.", "Conclusion."}},
		{"no delimiter", "one single block\nwith a newline", []string{"one single block\nwith a newline"}},
		{"empty text", "", []string{}},
		{"only delimiters", "\n \n\n \n", []string{}},
		{"leading and trailing delimiter", "\n \na\n \n", []string{"a"}},
		{"adjacent delimiters", "a\n \n\n \nb", []string{"a", "b"}},
		{"plain blank line is not a delimiter", "a\n\nb", []string{"a\n\nb"}},
	}

	s := NewParagraphSplitter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.SplitText(tt.in))
		})
	}
}

func TestSplitText_Properties(t *testing.T) {
	inputs := []string{
		"",
		"x",
		"\n \n",
		"a\n \nb\n \nc",
		"a\n \n\n \n\n \nb",
		"\n \n \n \n",
		"para one\n \n \n \npara two\n \n",
	}

	s := NewParagraphSplitter()
	for _, in := range inputs {
		chunks := s.SplitText(in)
		k := strings.Count(in, ParagraphDelimiter)

		assert.LessOrEqual(t, len(chunks), k+1, "input %q", in)
		for _, c := range chunks {
			assert.NotEmpty(t, c, "input %q", in)
		}

		// order is preserved: each chunk appears after the previous one in the source
		pos := 0
		for _, c := range chunks {
			idx := strings.Index(in[pos:], c)
			require.GreaterOrEqual(t, idx, 0, "chunk %q out of order in %q", c, in)
			pos += idx + len(c)
		}
	}
}

func TestSplit_AssignsPositionalIDs(t *testing.T) {
	docs := []*schema.Document{
		{ID: "a", Text: "one\n \ntwo", Metadata: map[string]interface{}{schema.MetadataKeyFileName: "a.pdf"}},
		{ID: "b", Text: "three"},
	}

	chunks, err := NewParagraphSplitter().Split(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, []string{"0", "1", "2"}[i], c.ID)
		assert.Equal(t, i, c.Metadata[schema.MetadataKeyChunkIndex])
	}
	assert.Equal(t, "a.pdf", chunks[0].Metadata[schema.MetadataKeyFileName])
	assert.NotContains(t, docs[0].Metadata, schema.MetadataKeyChunkIndex)
}
