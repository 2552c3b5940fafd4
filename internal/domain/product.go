package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	MinimumPrice decimal.Decimal `json:"minimumPrice"`
	BrandID      *ID             `json:"brandId,omitempty"`
	CategoryID   *ID             `json:"categoryId,omitempty"`
}

// ProductOverride is a customer-specific replacement price for a product.
type ProductOverride struct {
	ID            ID              `json:"id"`
	ProductID     ID              `json:"productId"`
	CustomerID    ID              `json:"customerId"`
	OverridePrice decimal.Decimal `json:"overridePrice"`
}
