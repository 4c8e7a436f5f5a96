package domain

import "fmt"

// Metadata field names used across ingestion and query filtering.
const (
	FieldSource      = "source"
	FieldContentType = "content_type"
	FieldPage        = "page"
	FieldChunkIndex  = "chunk_index"
	FieldTotalChunks = "total_chunks"
	FieldIsPartial   = "is_partial"
	FieldIsTable     = "is_table"
	FieldCharCount   = "char_count"
)

// ContentTypeTable marks tabular chunks; the is_table metadata flag
// derives from it.
const ContentTypeTable = "table"

// Chunk represents a unit of extracted document content ready for
// ingestion into a collection. Metadata holds scalar values only so
// every field can back a filter predicate.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// NewChunk creates a new Chunk instance.
func NewChunk(id, text string, metadata map[string]any) Chunk {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return Chunk{ID: id, Text: text, Metadata: metadata}
}

// ContentType returns the chunk's content_type metadata field.
func (c Chunk) ContentType() string {
	s, _ := c.Metadata[FieldContentType].(string)
	return s
}

// Page returns the chunk's page metadata field, 0 when unknown.
func (c Chunk) Page() int {
	switch v := c.Metadata[FieldPage].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// ValidateChunk validates a Chunk instance.
func ValidateChunk(c Chunk) error {
	if c.ID == "" {
		return Validationf("chunk ID is required")
	}
	if c.Text == "" {
		return Validationf("chunk text is required")
	}
	if c.ContentType() == "" {
		return Validationf("chunk content_type is required")
	}
	for field, value := range c.Metadata {
		if !IsScalar(value) {
			return Validationf("metadata field %q has non-scalar value of type %T", field, value)
		}
	}
	return nil
}

// IsScalar reports whether a metadata value is one of the scalar types
// a filtering store can index.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return true
	}
	return false
}

// CloneMetadata returns a shallow copy of a metadata map. Scalars only,
// so a shallow copy is a full copy.
func CloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FormatMetadataValue renders a metadata value for display.
func FormatMetadataValue(v any) string {
	return fmt.Sprintf("%v", v)
}
