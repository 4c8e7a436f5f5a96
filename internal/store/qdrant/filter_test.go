package qdrant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvec/docvec/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func TestBuildFilterEmpty(t *testing.T) {
	qf, err := buildFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, qf)

	qf, err = buildFilter(domain.And())
	require.NoError(t, err)
	assert.Nil(t, qf)
}

func TestBuildFilterEq(t *testing.T) {
	qf, err := buildFilter(domain.And(domain.Eq("content_type", "table")))
	require.NoError(t, err)
	require.Len(t, qf.Must, 1)

	field := qf.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, "content_type", field.Key)
	assert.Equal(t, "table", field.GetMatch().GetKeyword())
}

func TestBuildFilterEqBool(t *testing.T) {
	qf, err := buildFilter(domain.And(domain.Eq("is_table", true)))
	require.NoError(t, err)
	require.Len(t, qf.Must, 1)
	assert.True(t, qf.Must[0].GetField().GetMatch().GetBoolean())
}

func TestBuildFilterEqFloatUsesRange(t *testing.T) {
	qf, err := buildFilter(domain.And(domain.Eq("score", 0.5)))
	require.NoError(t, err)
	require.Len(t, qf.Must, 1)

	r := qf.Must[0].GetField().GetRange()
	require.NotNil(t, r)
	assert.Equal(t, 0.5, r.GetGte())
	assert.Equal(t, 0.5, r.GetLte())
}

func TestBuildFilterIn(t *testing.T) {
	qf, err := buildFilter(domain.And(domain.In("content_type", "text", "table")))
	require.NoError(t, err)
	require.Len(t, qf.Must, 1)

	keywords := qf.Must[0].GetField().GetMatch().GetKeywords()
	require.NotNil(t, keywords)
	assert.Equal(t, []string{"text", "table"}, keywords.Strings)
}

func TestBuildFilterInMixedTypes(t *testing.T) {
	_, err := buildFilter(domain.And(domain.In("content_type", "text", 3)))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestBuildFilterRange(t *testing.T) {
	qf, err := buildFilter(domain.And(domain.Range("page", fptr(3), fptr(9))))
	require.NoError(t, err)
	require.Len(t, qf.Must, 1)

	r := qf.Must[0].GetField().GetRange()
	require.NotNil(t, r)
	assert.Equal(t, 3.0, r.GetGte())
	assert.Equal(t, 9.0, r.GetLte())
}

func TestBuildFilterConjunction(t *testing.T) {
	qf, err := buildFilter(domain.And(
		domain.Eq("content_type", "table"),
		domain.Eq("source", "10q.pdf"),
		domain.Range("page", fptr(1), nil),
	))
	require.NoError(t, err)
	assert.Len(t, qf.Must, 3)
}

func TestBuildFilterInvalid(t *testing.T) {
	_, err := buildFilter(domain.And(domain.Range("page", fptr(9), fptr(3))))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
