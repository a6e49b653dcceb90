package orders

// CreateOrderRequest is the checkout payload. The cart lives client side
// and arrives whole; quantities are validated per line.
type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
	CustomerName    string            `json:"customerName" validate:"required,min=2"`
	Email           string            `json:"email" validate:"required,email"`
	Phone           string            `json:"phone" validate:"required,min=10"`
	ShippingAddress string            `json:"shippingAddress" validate:"required,min=10"`
}

type CreateOrderItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateStatusRequest changes an order's fulfilment state.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
}

// ListRequest filters the back office order listing.
type ListRequest struct {
	Page   int
	Limit  int
	Status *OrderStatus
	Search string
}
