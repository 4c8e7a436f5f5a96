package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docvec/docvec/internal/domain"
)

// RawChunk is one record as decoded from a RAG source document. The
// chunk_id may arrive as a JSON number or a string.
type RawChunk struct {
	ChunkID  any            `json:"chunk_id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Normalizer validates raw chunk records and flattens them into
// (id, text, flat-metadata) triples.
//
// Missing optional metadata defaults to chunk_index=0, total_chunks=1,
// is_partial=false and page=0 (page unknown). These defaults are load
// bearing: downstream display code reads the fields without nil checks.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize turns a raw record into a chunk ready for enrichment.
// It fails with a validation error naming the offending field; it never
// silently drops a record.
func (n *Normalizer) Normalize(raw RawChunk) (domain.Chunk, error) {
	id, err := chunkID(raw.ChunkID)
	if err != nil {
		return domain.Chunk{}, err
	}
	if strings.TrimSpace(raw.Text) == "" {
		return domain.Chunk{}, domain.Validationf("chunk %s: text is missing or empty", id)
	}

	contentType, _ := raw.Metadata[domain.FieldContentType].(string)
	if contentType == "" {
		return domain.Chunk{}, domain.Validationf("chunk %s: metadata.content_type is missing or empty", id)
	}

	meta := map[string]any{
		domain.FieldSource:      "",
		domain.FieldContentType: contentType,
		domain.FieldPage:        0,
		domain.FieldChunkIndex:  0,
		domain.FieldTotalChunks: 1,
		domain.FieldIsPartial:   false,
	}

	for field, value := range raw.Metadata {
		if value == nil {
			continue // absent field keeps its default
		}
		if !domain.IsScalar(value) {
			return domain.Chunk{}, domain.Validationf("chunk %s: metadata field %q has non-scalar value of type %T", id, field, value)
		}
		switch field {
		case domain.FieldSource:
			s, ok := value.(string)
			if !ok {
				return domain.Chunk{}, domain.Validationf("chunk %s: metadata.source must be a string, got %T", id, value)
			}
			meta[field] = s
		case domain.FieldContentType:
			// already validated above
		case domain.FieldPage, domain.FieldChunkIndex, domain.FieldTotalChunks:
			i, err := intField(value)
			if err != nil {
				return domain.Chunk{}, domain.Validationf("chunk %s: metadata.%s: %v", id, field, err)
			}
			meta[field] = i
		case domain.FieldIsPartial:
			b, ok := value.(bool)
			if !ok {
				return domain.Chunk{}, domain.Validationf("chunk %s: metadata.is_partial must be a boolean, got %T", id, value)
			}
			meta[field] = b
		default:
			meta[field] = value
		}
	}

	page := meta[domain.FieldPage].(int)
	if page < 0 {
		return domain.Chunk{}, domain.Validationf("chunk %s: metadata.page must not be negative, got %d", id, page)
	}
	chunkIndex := meta[domain.FieldChunkIndex].(int)
	totalChunks := meta[domain.FieldTotalChunks].(int)
	if totalChunks < 1 {
		return domain.Chunk{}, domain.Validationf("chunk %s: metadata.total_chunks must be at least 1, got %d", id, totalChunks)
	}
	if chunkIndex < 0 || chunkIndex >= totalChunks {
		return domain.Chunk{}, domain.Validationf("chunk %s: metadata.chunk_index %d out of range [0, %d)", id, chunkIndex, totalChunks)
	}

	return domain.NewChunk(id, raw.Text, meta), nil
}

// NormalizeAll normalizes a slice of raw records, failing on the first
// invalid one.
func (n *Normalizer) NormalizeAll(raws []RawChunk) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, 0, len(raws))
	for _, raw := range raws {
		chunk, err := n.Normalize(raw)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// chunkID derives the stored document id from the source record's
// chunk_id. Numeric ids become "chunk_<n>"; string ids pass through
// unchanged, which keeps normalization idempotent when a normalized
// record is fed back in.
func chunkID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if strings.TrimSpace(id) == "" {
			return "", domain.Validationf("chunk_id is missing or empty")
		}
		return id, nil
	case float64:
		return "chunk_" + strconv.FormatFloat(id, 'f', -1, 64), nil
	case int:
		return "chunk_" + strconv.Itoa(id), nil
	case int64:
		return "chunk_" + strconv.FormatInt(id, 10), nil
	case nil:
		return "", domain.Validationf("chunk_id is missing or empty")
	default:
		return "", domain.Validationf("chunk_id must be a string or number, got %T", v)
	}
}

// intField coerces a decoded JSON value into an integer. JSON numbers
// decode as float64; fractional values are rejected rather than rounded.
func intField(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case float32:
		if n != float32(int(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
