package service

import (
	"context"
	"strings"

	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/store"
)

const (
	// DefaultTopK is the result count used when an intent does not set one.
	DefaultTopK = 5
	// MaxTopK caps the result count a single query may request when no
	// explicit maximum is configured.
	MaxTopK = 50
	// statsSampleSize bounds how many chunks the stats call inspects for
	// the content-type distribution.
	statsSampleSize = 1000
)

// StoreQuerier is the read-only slice of the vector store the query
// service depends on.
type StoreQuerier interface {
	Query(ctx context.Context, collection, queryText string, topK int, filter *domain.Filter) (*store.QueryOutput, error)
	Count(ctx context.Context, collection string) (int, error)
	ListCollections(ctx context.Context) ([]string, error)
	Sample(ctx context.Context, collection string, limit int) ([]map[string]any, error)
}

// CollectionStats describes a collection for the stats command.
type CollectionStats struct {
	Collection   string
	TotalChunks  int
	SampleSize   int
	ContentTypes map[string]int
}

// QueryService turns query intents into filtered store queries and
// shapes the raw results. Queries are read-only and stateless.
type QueryService struct {
	store   StoreQuerier
	shaper  *ResultShaper
	maxTopK int
}

// NewQueryService creates a new QueryService instance. maxTopK bounds
// the result count a single query may request; zero or negative means
// the MaxTopK default.
func NewQueryService(querier StoreQuerier, shaper *ResultShaper, maxTopK int) *QueryService {
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	return &QueryService{store: querier, shaper: shaper, maxTopK: maxTopK}
}

// Search runs one query intent against a collection. A missing
// collection surfaces as a not-found error, never as an empty result
// set: hiding a setup mistake behind "no matches" would be worse than
// failing.
func (s *QueryService) Search(ctx context.Context, collection string, intent QueryIntent) ([]Result, error) {
	text := strings.TrimSpace(intent.Text)
	if text == "" {
		return nil, domain.ErrEmptyQuery
	}

	topK := intent.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}

	filter, err := BuildFilter(intent)
	if err != nil {
		return nil, err
	}

	out, err := s.store.Query(ctx, collection, text, topK, filter)
	if err != nil {
		return nil, err
	}
	return s.shaper.Shape(out, intent.FullContent)
}

// MultiSearch runs independent query intents and returns one result
// list per intent, in order. Lists are not merged; callers that want a
// single ranking combine them explicitly with CombineResults.
func (s *QueryService) MultiSearch(ctx context.Context, collection string, intents []QueryIntent) ([][]Result, error) {
	lists := make([][]Result, 0, len(intents))
	for _, intent := range intents {
		results, err := s.Search(ctx, collection, intent)
		if err != nil {
			return nil, err
		}
		lists = append(lists, results)
	}
	return lists, nil
}

// Stats reports the chunk count and the content-type distribution of a
// metadata sample.
func (s *QueryService) Stats(ctx context.Context, collection string) (*CollectionStats, error) {
	total, err := s.store.Count(ctx, collection)
	if err != nil {
		return nil, err
	}

	sampleSize := total
	if sampleSize > statsSampleSize {
		sampleSize = statsSampleSize
	}

	stats := &CollectionStats{
		Collection:   collection,
		TotalChunks:  total,
		ContentTypes: make(map[string]int),
	}
	if sampleSize == 0 {
		return stats, nil
	}

	metadatas, err := s.store.Sample(ctx, collection, sampleSize)
	if err != nil {
		return nil, err
	}
	stats.SampleSize = len(metadatas)
	for _, meta := range metadatas {
		if ctype, ok := meta[domain.FieldContentType].(string); ok {
			stats.ContentTypes[ctype]++
		}
	}
	return stats, nil
}

// Collections lists the collection names known to the store.
func (s *QueryService) Collections(ctx context.Context) ([]string, error) {
	return s.store.ListCollections(ctx)
}
