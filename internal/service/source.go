package service

import (
	"encoding/json"

	"github.com/docvec/docvec/internal/domain"
)

// SourceDocument is a RAG-prepared JSON document: pre-chunked content
// produced by an upstream PDF conversion pipeline.
type SourceDocument struct {
	SourceFile  string     `json:"source_file"`
	TotalChunks int        `json:"total_chunks"`
	Chunks      []RawChunk `json:"chunks"`
}

// ParseSource decodes a RAG JSON document. Malformed JSON is a
// validation error; an empty chunk list is allowed.
func ParseSource(data []byte) (*SourceDocument, error) {
	var doc SourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "source file is not valid RAG JSON", err)
	}
	return &doc, nil
}
