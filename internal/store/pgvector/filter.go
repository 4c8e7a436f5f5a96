package pgvector

import (
	"fmt"
	"strings"

	"github.com/docvec/docvec/internal/domain"
)

// filterSQL translates a backend-neutral filter into SQL conditions
// over the JSONB metadata column. It returns the WHERE-clause suffix
// (leading " AND ..." or empty) and the extended argument list.
func filterSQL(f *domain.Filter, args []any) (string, []any, error) {
	if f.IsEmpty() {
		return "", args, nil
	}
	if err := f.Validate(); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	for _, c := range f.Conditions {
		if !validFieldName(c.Field) {
			return "", nil, domain.Validationf("invalid filter field name %q", c.Field)
		}

		switch c.Op {
		case domain.OpEq:
			clause, v, err := eqSQL(c.Field, c.Value, len(args)+1)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(" AND " + clause)
			args = append(args, v)

		case domain.OpIn:
			clause, v, err := inSQL(c.Field, c.Values, len(args)+1)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(" AND " + clause)
			args = append(args, v)

		case domain.OpRange:
			if c.Min != nil {
				sb.WriteString(fmt.Sprintf(" AND (metadata->>'%s')::numeric >= $%d", c.Field, len(args)+1))
				args = append(args, *c.Min)
			}
			if c.Max != nil {
				sb.WriteString(fmt.Sprintf(" AND (metadata->>'%s')::numeric <= $%d", c.Field, len(args)+1))
				args = append(args, *c.Max)
			}
		}
	}
	return sb.String(), args, nil
}

func eqSQL(field string, value any, placeholder int) (string, any, error) {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("metadata->>'%s' = $%d", field, placeholder), v, nil
	case bool:
		return fmt.Sprintf("(metadata->>'%s')::boolean = $%d", field, placeholder), v, nil
	case int, int32, int64, float32, float64:
		return fmt.Sprintf("(metadata->>'%s')::numeric = $%d", field, placeholder), toFloat(v), nil
	default:
		return "", nil, domain.Validationf("equality on field %q has unsupported value type %T", field, value)
	}
}

func inSQL(field string, values []any, placeholder int) (string, any, error) {
	switch values[0].(type) {
	case string:
		strs := make([]string, len(values))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				return "", nil, domain.Validationf("membership on field %q mixes value types", field)
			}
			strs[i] = s
		}
		return fmt.Sprintf("metadata->>'%s' = ANY($%d)", field, placeholder), strs, nil
	case int, int32, int64, float32, float64:
		nums := make([]float64, len(values))
		for i, v := range values {
			switch v.(type) {
			case int, int32, int64, float32, float64:
				nums[i] = toFloat(v)
			default:
				return "", nil, domain.Validationf("membership on field %q mixes value types", field)
			}
		}
		return fmt.Sprintf("(metadata->>'%s')::numeric = ANY($%d)", field, placeholder), nums, nil
	default:
		return "", nil, domain.Validationf("membership on field %q has unsupported value type %T", field, values[0])
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// validFieldName guards the field names spliced into SQL: lowercase
// identifiers only, matching the flat metadata schema.
func validFieldName(field string) bool {
	if field == "" {
		return false
	}
	for _, r := range field {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
