// Package diffguard decides whether an edit is worth a network write.
package diffguard

import (
	"strings"

	"github.com/shopspring/decimal"
	"orderdesk/internal/domain"
)

// Epsilon is the smallest price difference treated as a change.
var Epsilon = decimal.RequireFromString("0.001")

// HasChanges reports whether the edited override differs from the stored
// one by more than Epsilon.
func HasChanges(edited, original domain.ProductOverride) bool {
	return PriceChanged(edited.OverridePrice, original.OverridePrice)
}

func PriceChanged(edited, original decimal.Decimal) bool {
	return edited.Sub(original).Abs().GreaterThan(Epsilon)
}

// NameChanged ignores surrounding whitespace.
func NameChanged(edited, original string) bool {
	return strings.TrimSpace(edited) != strings.TrimSpace(original)
}
