package lookup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"orderdesk/internal/domain"
)

func productID(p domain.Product) domain.ID { return p.ID }

func TestBuild_ResolvesNumericAndStringKeys(t *testing.T) {
	products := []domain.Product{{ID: "1", Name: "Widget", Price: decimal.NewFromInt(10)}}
	idx := Build(products, productID)

	byNumber, ok := idx.Get(1)
	require.True(t, ok)
	byString, ok := idx.Get("1")
	require.True(t, ok)
	assert.Equal(t, byNumber, byString)
	assert.Equal(t, "Widget", byString.Name)

	byFloat, ok := idx.Get(float64(1))
	require.True(t, ok)
	assert.Equal(t, byNumber, byFloat)
}

func TestBuild_LastWriteWins(t *testing.T) {
	idx := Build([]domain.Product{{ID: "7", Name: "first"}, {ID: "7", Name: "second"}}, productID)
	got, ok := idx.Get("7")
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_MissesAreNotErrors(t *testing.T) {
	idx := Build([]domain.Product{{ID: ""}, {ID: "2"}}, productID)
	assert.Equal(t, 1, idx.Len())
	assert.False(t, idx.Has(3))
	assert.False(t, idx.Has(nil))

	var empty *Index[domain.Product]
	_, ok := empty.Get(1)
	assert.False(t, ok)
	assert.Zero(t, empty.Len())
}
