package domain

// OrderStatus mirrors the status of the order's approval request.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRejected  OrderStatus = "rejected"
)

// Order is an extra-supply order placed by a customer.
type Order struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customerId"`
	CustomerName string      `json:"customerName"`
	Item         string      `json:"item"`
	Date         string      `json:"date"`
	Status       OrderStatus `json:"status"`
}

func (Order) isRequestPayload() {}
