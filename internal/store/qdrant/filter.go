package qdrant

import (
	qd "github.com/qdrant/go-client/qdrant"

	"github.com/docvec/docvec/internal/domain"
)

// buildFilter translates a backend-neutral filter into Qdrant match and
// range conditions joined under Must.
func buildFilter(f *domain.Filter) (*qd.Filter, error) {
	if f.IsEmpty() {
		return nil, nil
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	must := make([]*qd.Condition, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		switch c.Op {
		case domain.OpEq:
			cond, err := eqCondition(c.Field, c.Value)
			if err != nil {
				return nil, err
			}
			must = append(must, cond)

		case domain.OpIn:
			cond, err := inCondition(c.Field, c.Values)
			if err != nil {
				return nil, err
			}
			must = append(must, cond)

		case domain.OpRange:
			must = append(must, qd.NewRange(c.Field, &qd.Range{Gte: c.Min, Lte: c.Max}))
		}
	}
	return &qd.Filter{Must: must}, nil
}

func eqCondition(field string, value any) (*qd.Condition, error) {
	switch v := value.(type) {
	case string:
		return qd.NewMatch(field, v), nil
	case bool:
		return qd.NewMatchBool(field, v), nil
	case int:
		return qd.NewMatchInt(field, int64(v)), nil
	case int32:
		return qd.NewMatchInt(field, int64(v)), nil
	case int64:
		return qd.NewMatchInt(field, v), nil
	case float32:
		f := float64(v)
		return qd.NewRange(field, &qd.Range{Gte: &f, Lte: &f}), nil
	case float64:
		return qd.NewRange(field, &qd.Range{Gte: &v, Lte: &v}), nil
	default:
		return nil, domain.Validationf("equality on field %q has unsupported value type %T", field, value)
	}
}

func inCondition(field string, values []any) (*qd.Condition, error) {
	switch values[0].(type) {
	case string:
		keywords := make([]string, len(values))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, domain.Validationf("membership on field %q mixes value types", field)
			}
			keywords[i] = s
		}
		return qd.NewMatchKeywords(field, keywords...), nil
	case int, int32, int64:
		ints := make([]int64, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case int:
				ints[i] = int64(n)
			case int32:
				ints[i] = int64(n)
			case int64:
				ints[i] = n
			default:
				return nil, domain.Validationf("membership on field %q mixes value types", field)
			}
		}
		return qd.NewMatchInts(field, ints...), nil
	default:
		return nil, domain.Validationf("membership on field %q has unsupported value type %T", field, values[0])
	}
}
