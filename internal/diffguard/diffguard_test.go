package diffguard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"orderdesk/internal/domain"
)

func override(price string) domain.ProductOverride {
	return domain.ProductOverride{
		ID:            "7",
		ProductID:     "1",
		CustomerID:    "2",
		OverridePrice: decimal.RequireFromString(price),
	}
}

func TestHasChanges(t *testing.T) {
	tests := []struct {
		name     string
		edited   string
		original string
		want     bool
	}{
		{name: "identical", edited: "99.99", original: "99.99", want: false},
		{name: "one cent up", edited: "100.00", original: "99.99", want: true},
		{name: "one cent down", edited: "99.98", original: "99.99", want: true},
		{name: "below epsilon", edited: "99.9901", original: "99.99", want: false},
		{name: "exactly epsilon", edited: "99.991", original: "99.99", want: false},
		{name: "trailing zeros", edited: "99.990", original: "99.99", want: false},
		{name: "from zero", edited: "0.01", original: "0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasChanges(override(tt.edited), override(tt.original)))
		})
	}
}

func TestNameChanged(t *testing.T) {
	assert.False(t, NameChanged("Acme", "Acme"))
	assert.False(t, NameChanged("  Acme ", "Acme"))
	assert.True(t, NameChanged("acme", "Acme"))
	assert.True(t, NameChanged("Acme Co", "Acme"))
}
