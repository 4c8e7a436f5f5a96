package service

import (
	"sort"

	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/store"
)

// DefaultPreviewRunes is the preview length applied when none is
// configured, in characters.
const DefaultPreviewRunes = 300

// SimilarityTransform converts a backend-reported ranking value into a
// similarity where higher means closer. Transforms must be monotonic
// decreasing in distance; they are configured explicitly because
// backends disagree on what they report.
type SimilarityTransform func(float64) float64

// TransformFor returns the transform for a named metric.
func TransformFor(metric store.Metric) (SimilarityTransform, error) {
	switch metric {
	case store.MetricCosineDistance:
		// cosine distance lies in [0, 2]; 1-d maps identical vectors to 1.
		return func(d float64) float64 { return 1 - d }, nil
	case store.MetricSimilarity:
		return func(d float64) float64 { return d }, nil
	default:
		return nil, domain.Validationf("unknown distance metric %q", metric)
	}
}

// Result is one ranked match with a normalized similarity score.
type Result struct {
	ID         string
	Text       string
	Metadata   map[string]any
	Similarity float64
	Truncated  bool
}

// ShaperConfig configures result shaping.
type ShaperConfig struct {
	Metric       store.Metric
	PreviewRunes int // 0 means DefaultPreviewRunes
}

// ResultShaper maps the store's parallel result arrays into ranked
// result records.
type ResultShaper struct {
	transform SimilarityTransform
	preview   int
}

// NewResultShaper creates a new ResultShaper instance.
func NewResultShaper(cfg ShaperConfig) (*ResultShaper, error) {
	transform, err := TransformFor(cfg.Metric)
	if err != nil {
		return nil, err
	}
	preview := cfg.PreviewRunes
	if preview < 0 {
		return nil, domain.Validationf("preview length must not be negative, got %d", preview)
	}
	if preview == 0 {
		preview = DefaultPreviewRunes
	}
	return &ResultShaper{transform: transform, preview: preview}, nil
}

// Shape converts a query output into results ordered as the store
// returned them. Unless fullContent is set, text is truncated to the
// configured preview length; truncation counts runes so it never splits
// a multi-byte character.
func (s *ResultShaper) Shape(out *store.QueryOutput, fullContent bool) ([]Result, error) {
	if out == nil {
		return []Result{}, nil
	}
	n := len(out.Documents)
	if len(out.IDs) != n || len(out.Metadatas) != n || len(out.Distances) != n {
		return nil, domain.Backendf(nil, "store returned mismatched result arrays: %d ids, %d documents, %d metadatas, %d distances",
			len(out.IDs), n, len(out.Metadatas), len(out.Distances))
	}

	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		text := out.Documents[i]
		truncated := false
		if !fullContent {
			text, truncated = truncateRunes(text, s.preview)
		}
		results = append(results, Result{
			ID:         out.IDs[i],
			Text:       text,
			Metadata:   out.Metadatas[i],
			Similarity: s.transform(out.Distances[i]),
			Truncated:  truncated,
		})
	}
	return results, nil
}

// CombineResults merges the result lists of independent queries,
// deduplicating by id with max-similarity-wins, ordered by descending
// similarity. Multi-query retrieval produces its lists separately; this
// merge is an explicit caller choice, never applied implicitly.
func CombineResults(lists ...[]Result) []Result {
	best := make(map[string]Result)
	order := make([]string, 0)
	for _, list := range lists {
		for _, r := range list {
			existing, ok := best[r.ID]
			if !ok {
				order = append(order, r.ID)
				best[r.ID] = r
			} else if r.Similarity > existing.Similarity {
				best[r.ID] = r
			}
		}
	}

	merged := make([]Result, 0, len(best))
	for _, id := range order {
		merged = append(merged, best[id])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	return merged
}

// truncateRunes shortens s to at most n characters, appending an
// ellipsis when anything was cut.
func truncateRunes(s string, n int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= n {
		return s, false
	}
	return string(runes[:n]) + "...", true
}
