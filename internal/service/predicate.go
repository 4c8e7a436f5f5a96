package service

import (
	"github.com/docvec/docvec/internal/domain"
)

// QueryIntent is a high-level retrieval request: free text plus the
// named filter options the CLI and HTTP API expose. Intents are built
// per call and never persisted.
type QueryIntent struct {
	Text        string
	ContentType string
	TablesOnly  bool
	Source      string
	PageMin     *int
	PageMax     *int
	TopK        int
	FullContent bool
}

// BuildFilter translates a query intent into the backend-neutral filter
// expression. It returns nil when the intent carries no predicates.
//
// Tables-only is sugar for content_type == "table" and takes precedence
// over an explicit content-type filter, mirroring the option precedence
// of the CLI. A page range keeps both bounds inclusive; a single bound
// leaves the other side open.
func BuildFilter(intent QueryIntent) (*domain.Filter, error) {
	if intent.PageMin != nil && intent.PageMax != nil && *intent.PageMin > *intent.PageMax {
		return nil, domain.ErrInvalidPageRange
	}

	var conds []domain.Condition

	switch {
	case intent.TablesOnly:
		conds = append(conds, domain.Eq(domain.FieldContentType, domain.ContentTypeTable))
	case intent.ContentType != "":
		conds = append(conds, domain.Eq(domain.FieldContentType, intent.ContentType))
	}

	if intent.Source != "" {
		conds = append(conds, domain.Eq(domain.FieldSource, intent.Source))
	}

	if intent.PageMin != nil || intent.PageMax != nil {
		var min, max *float64
		if intent.PageMin != nil {
			v := float64(*intent.PageMin)
			min = &v
		}
		if intent.PageMax != nil {
			v := float64(*intent.PageMax)
			max = &v
		}
		conds = append(conds, domain.Range(domain.FieldPage, min, max))
	}

	if len(conds) == 0 {
		return nil, nil
	}

	filter := domain.And(conds...)
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return filter, nil
}
