package primary

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minbar/internal/models"
	"minbar/internal/store"
)

func queryVector() pgvector.Vector {
	return pgvector.NewVector([]float32{1, 0, 0})
}

func TestProfileMatchQuery_Unbounded(t *testing.T) {
	sql, args := profileMatchQuery(queryVector(), store.MatchQuery{})

	assert.True(t, strings.HasSuffix(sql, "ORDER BY distance ASC"))
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "< $")
	require.Len(t, args, 1)
}

func TestProfileMatchQuery_ThresholdAndLimit(t *testing.T) {
	max := 0.6
	sql, args := profileMatchQuery(queryVector(), store.MatchQuery{MaxDistance: &max, Limit: 25})

	assert.Contains(t, sql, "interest_embedding <=> $1 < $2")
	assert.Contains(t, sql, "ORDER BY distance ASC LIMIT $3")
	require.Len(t, args, 3)
	assert.Equal(t, 0.6, args[1])
	assert.Equal(t, 25, args[2])
}

func TestContentMatchQuery_FiltersType(t *testing.T) {
	sql, args := contentMatchQuery(queryVector(), models.ContentTypePost, uuid.Nil, store.MatchQuery{Limit: 10})

	assert.Contains(t, sql, "content_type = $2")
	assert.NotContains(t, sql, "id <>")
	assert.Contains(t, sql, "ORDER BY distance ASC LIMIT $3")
	require.Len(t, args, 3)
	assert.Equal(t, models.ContentTypePost, args[1])
}

func TestContentMatchQuery_ExcludesID(t *testing.T) {
	self := uuid.New()
	max := 0.4
	sql, args := contentMatchQuery(queryVector(), models.ContentTypePost, self, store.MatchQuery{MaxDistance: &max, Limit: 50})

	assert.Contains(t, sql, "id <> $3")
	assert.Contains(t, sql, "embedding <=> $1 < $4")
	assert.Contains(t, sql, "LIMIT $5")
	require.Len(t, args, 5)
	assert.Equal(t, self, args[2])
	assert.Equal(t, 0.4, args[3])
	assert.Equal(t, 50, args[4])
}
