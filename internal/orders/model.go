package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known fulfilment state.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed customer order. UserID is nil for guest checkouts.
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          *int64          `json:"userId,omitempty"`
	CustomerName    string          `json:"customerName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ShippingAddress string          `json:"shippingAddress"`
	Status          OrderStatus     `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem is a line on an order. Name and Price are copied from the
// product at checkout so later catalog edits never rewrite history.
type OrderItem struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"-"`
	ProductID int64            `json:"productId"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
	Product   *ProductSummary  `json:"product,omitempty"`
}

// ProductSummary is the current catalog projection attached to historic
// order items for display.
type ProductSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image,omitempty"`
}

// CheckoutProduct is the slice of a product row checkout needs while the
// row is locked.
type CheckoutProduct struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	Stock  int
	Active bool
}
