package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docvec/docvec/internal/domain"
)

// TypeFilter holds the include/exclude content-type lists applied
// during enrichment. A type present in both lists is a configuration
// error and is rejected at construction, before any chunk is touched.
type TypeFilter struct {
	include map[string]struct{}
	exclude map[string]struct{}
}

// NewTypeFilter creates a TypeFilter from raw comma-split lists.
// Empty entries are dropped; surrounding whitespace is trimmed.
func NewTypeFilter(include, exclude []string) (*TypeFilter, error) {
	f := &TypeFilter{
		include: typeSet(include),
		exclude: typeSet(exclude),
	}

	var conflicts []string
	for t := range f.include {
		if _, ok := f.exclude[t]; ok {
			conflicts = append(conflicts, t)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return nil, domain.Validationf("content types present in both include and exclude lists: %s", strings.Join(conflicts, ", "))
	}
	return f, nil
}

// Keep reports whether a chunk with the given content type passes the
// filter. With no lists configured every type passes.
func (f *TypeFilter) Keep(contentType string) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 {
		if _, ok := f.include[contentType]; !ok {
			return false
		}
	}
	if _, ok := f.exclude[contentType]; ok {
		return false
	}
	return true
}

func typeSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// Enricher derives computed metadata fields and applies the configured
// content-type filter. Enrichment is pure: the input chunk is never
// mutated, and enriching twice yields the same result as once.
type Enricher struct {
	filter *TypeFilter
}

// NewEnricher creates a new Enricher instance.
func NewEnricher(filter *TypeFilter) *Enricher {
	return &Enricher{filter: filter}
}

// Enrich computes is_table and char_count for a chunk. The second
// return value reports whether the chunk passes the type filter.
// char_count counts characters, not bytes, so multi-byte text measures
// the way it reads.
func (e *Enricher) Enrich(c domain.Chunk) (domain.Chunk, bool) {
	contentType := c.ContentType()
	if !e.filter.Keep(contentType) {
		return domain.Chunk{}, false
	}

	meta := domain.CloneMetadata(c.Metadata)
	meta[domain.FieldIsTable] = contentType == domain.ContentTypeTable
	meta[domain.FieldCharCount] = utf8.RuneCountInString(c.Text)

	return domain.NewChunk(c.ID, c.Text, meta), true
}

// EnrichAll enriches a slice of chunks, dropping the ones the type
// filter excludes and preserving input order.
func (e *Enricher) EnrichAll(chunks []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if enriched, ok := e.Enrich(c); ok {
			out = append(out, enriched)
		}
	}
	return out
}

// ContentTypeDistribution counts chunks per content type, used for the
// ingest summary and collection statistics.
func ContentTypeDistribution(chunks []domain.Chunk) map[string]int {
	counts := make(map[string]int)
	for _, c := range chunks {
		counts[c.ContentType()]++
	}
	return counts
}
