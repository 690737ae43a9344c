package schema

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "file_name"
	// MetadataKeyPageCount is the number of pages the text was extracted from.
	MetadataKeyPageCount = "page_count"
	// MetadataKeyChunkIndex is the zero-based position of a chunk within its source text.
	MetadataKeyChunkIndex = "chunk_index"
	// MetadataKeyScore is the similarity score reported by the vector store for a query hit.
	MetadataKeyScore = "score"
	// MetadataKeyCollection is the name of the collection a chunk was retrieved from.
	MetadataKeyCollection = "collection"
)

// Document is the central data structure representing a piece of text and its associated data.
// Loaders produce one Document per source file; splitters turn it into chunk Documents whose
// ID is the chunk's position rendered as a decimal string ("0", "1", ...).
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Text is the string content of the document chunk.
	Text string

	// Metadata holds arbitrary data about the document.
	Metadata map[string]interface{}
}

// Texts returns the Text of each document, in order.
func Texts(docs []*Document) []string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	return texts
}
