package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderEmpty     OrderStatus = "EMPTY"
	OrderPlaced    OrderStatus = "PLACED"
	OrderDone      OrderStatus = "DONE"
	OrderExpired   OrderStatus = "EXPIRED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderEmpty, OrderPlaced, OrderDone, OrderExpired, OrderCancelled}

func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus normalises case and surrounding whitespace.
func ParseOrderStatus(v string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(v)))
	return s, s.Valid()
}

type OrderLine struct {
	ProductID ID              `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID            ID              `json:"id"`
	Status        OrderStatus     `json:"status"`
	CustomerID    *ID             `json:"customerId,omitempty"`
	Products      []OrderLine     `json:"products"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
	LinkExpiresAt *time.Time      `json:"linkExpiresAt,omitempty"`
}

// Standalone reports whether the order is not linked to a registered customer.
func (o Order) Standalone() bool {
	return o.CustomerID == nil || o.CustomerID.IsZero()
}
