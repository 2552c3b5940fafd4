package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Form payloads sent to the backend on create and update.

type BrandInput struct {
	Name string `json:"name" validate:"notblank,max=50"`
}

func (in *BrandInput) Normalize() { in.Name = strings.TrimSpace(in.Name) }

type CategoryInput struct {
	Name string `json:"name" validate:"notblank,max=50"`
}

func (in *CategoryInput) Normalize() { in.Name = strings.TrimSpace(in.Name) }

type ProductInput struct {
	Name         string          `json:"name" validate:"notblank,max=100"`
	Description  string          `json:"description,omitempty" validate:"max=1000"`
	Price        decimal.Decimal `json:"price" validate:"min=0,max=1000000"`
	MinimumPrice decimal.Decimal `json:"minimumPrice" validate:"min=0,max=1000000"`
	BrandID      *ID             `json:"brandId,omitempty"`
	CategoryID   *ID             `json:"categoryId,omitempty"`
}

func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

type CustomerInput struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

func (in *CustomerInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
}

type AgentInput struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
}

func (in *AgentInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
}

// OverrideInput carries the product's minimum price for validation only;
// it is never sent to the backend.
type OverrideInput struct {
	ProductID     ID               `json:"productId" validate:"required"`
	CustomerID    ID               `json:"customerId" validate:"required"`
	OverridePrice decimal.Decimal  `json:"overridePrice" validate:"min=0,max=1000000"`
	MinimumPrice  *decimal.Decimal `json:"-"`
}

type OrderInput struct {
	Status     OrderStatus `json:"status" validate:"orderstatus"`
	CustomerID *ID         `json:"customerId,omitempty"`
}

func (in *OrderInput) Normalize() {
	if s, ok := ParseOrderStatus(string(in.Status)); ok {
		in.Status = s
	}
}
