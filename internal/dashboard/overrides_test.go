package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"orderdesk/internal/domain"
	"orderdesk/internal/lookup"
)

func TestProjectOverrides(t *testing.T) {
	products := lookup.Build([]domain.Product{
		{ID: "1", Name: "Widget", Price: money("120"), MinimumPrice: money("50")},
	}, func(p domain.Product) domain.ID { return p.ID })
	customers := lookup.Build([]domain.Customer{
		{ID: "2", Name: "Acme"},
	}, func(c domain.Customer) domain.ID { return c.ID })

	rows := ProjectOverrides([]domain.ProductOverride{
		{ID: "7", ProductID: "1", CustomerID: "2", OverridePrice: money("99.99")},
		{ID: "8", ProductID: "5", CustomerID: "6", OverridePrice: money("10")},
	}, products, customers)

	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", rows[0].ProductName)
	assert.Equal(t, "Acme", rows[0].CustomerName)
	assert.True(t, rows[0].MinimumPrice.Equal(money("50")))
	assert.True(t, rows[0].Price.Equal(money("120")))
	assert.Empty(t, rows[1].ProductName)
	assert.Empty(t, rows[1].CustomerName)
	assert.True(t, rows[1].MinimumPrice.IsZero())
}

func TestOverrideUnchanged(t *testing.T) {
	orig := OverrideRow{ProductOverride: domain.ProductOverride{ID: "7", ProductID: "1", CustomerID: "2", OverridePrice: money("99.99")}}

	assert.True(t, overrideUnchanged(domain.OverrideInput{ProductID: "1", CustomerID: "2", OverridePrice: money("99.99")}, orig))
	assert.False(t, overrideUnchanged(domain.OverrideInput{ProductID: "1", CustomerID: "2", OverridePrice: money("100.00")}, orig))
	assert.False(t, overrideUnchanged(domain.OverrideInput{ProductID: "1", CustomerID: "9", OverridePrice: money("99.99")}, orig))
}
