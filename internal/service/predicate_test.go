package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvec/docvec/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestBuildFilterEmpty(t *testing.T) {
	filter, err := BuildFilter(QueryIntent{Text: "anything"})
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestBuildFilterContentType(t *testing.T) {
	filter, err := BuildFilter(QueryIntent{ContentType: "text"})
	require.NoError(t, err)
	require.Len(t, filter.Conditions, 1)

	c := filter.Conditions[0]
	assert.Equal(t, domain.FieldContentType, c.Field)
	assert.Equal(t, domain.OpEq, c.Op)
	assert.Equal(t, "text", c.Value)
}

func TestBuildFilterTablesOnlyWins(t *testing.T) {
	filter, err := BuildFilter(QueryIntent{TablesOnly: true, ContentType: "text"})
	require.NoError(t, err)
	require.Len(t, filter.Conditions, 1)
	assert.Equal(t, domain.ContentTypeTable, filter.Conditions[0].Value)
}

func TestBuildFilterSource(t *testing.T) {
	filter, err := BuildFilter(QueryIntent{Source: "10q_3q25.pdf"})
	require.NoError(t, err)
	require.Len(t, filter.Conditions, 1)
	assert.Equal(t, domain.FieldSource, filter.Conditions[0].Field)
	assert.Equal(t, "10q_3q25.pdf", filter.Conditions[0].Value)
}

func TestBuildFilterPageRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max *int
		wantMin  *float64
		wantMax  *float64
		wantErr  bool
	}{
		{"both bounds", intPtr(3), intPtr(9), floatPtr(3), floatPtr(9), false},
		{"open max", intPtr(3), nil, floatPtr(3), nil, false},
		{"open min", nil, intPtr(9), nil, floatPtr(9), false},
		{"equal bounds", intPtr(5), intPtr(5), floatPtr(5), floatPtr(5), false},
		{"inverted", intPtr(9), intPtr(3), nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := BuildFilter(QueryIntent{PageMin: tt.min, PageMax: tt.max})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPageRange)
				return
			}
			require.NoError(t, err)
			require.Len(t, filter.Conditions, 1)

			c := filter.Conditions[0]
			assert.Equal(t, domain.FieldPage, c.Field)
			assert.Equal(t, domain.OpRange, c.Op)
			assert.Equal(t, tt.wantMin, c.Min)
			assert.Equal(t, tt.wantMax, c.Max)
		})
	}
}

func TestBuildFilterCombined(t *testing.T) {
	filter, err := BuildFilter(QueryIntent{
		TablesOnly: true,
		Source:     "report.pdf",
		PageMin:    intPtr(10),
		PageMax:    intPtr(40),
	})
	require.NoError(t, err)
	require.Len(t, filter.Conditions, 3)
	assert.Equal(t, domain.FieldContentType, filter.Conditions[0].Field)
	assert.Equal(t, domain.FieldSource, filter.Conditions[1].Field)
	assert.Equal(t, domain.FieldPage, filter.Conditions[2].Field)
}

func floatPtr(v float64) *float64 { return &v }
