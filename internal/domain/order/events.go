package order

import "time"

// AggregateType tags order events in the journal
const AggregateType = "Order"

const (
	EventOrderPlaced         = "OrderPlaced"
	EventOrderStatusChanged  = "OrderStatusChanged"
	EventCheckoutCompensated = "CheckoutCompensated"
	EventCheckoutIncomplete  = "CheckoutIncomplete"
)

type OrderPlaced struct {
	OrderID       string     `json:"order_id"`
	OwnerID       string     `json:"owner_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Items         []LineItem `json:"items"`
	Total         int        `json:"total"`
	PlacedAt      time.Time  `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID       string    `json:"order_id"`
	OwnerID       string    `json:"owner_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	ChangedAt     time.Time `json:"changed_at"`
}

// CheckoutCompensated records an order cancelled because stock ran out
// between the pre-check and the decrement.
type CheckoutCompensated struct {
	OrderID       string         `json:"order_id"`
	OwnerID       string         `json:"owner_id"`
	FailedProduct string         `json:"failed_product"`
	Restored      map[string]int `json:"restored"`
	Reason        string         `json:"reason"`
	CompensatedAt time.Time      `json:"compensated_at"`
}

// CheckoutIncomplete records an order that stands but whose follow-up step
// failed and needs operational attention.
type CheckoutIncomplete struct {
	OrderID    string    `json:"order_id"`
	OwnerID    string    `json:"owner_id"`
	Stage      string    `json:"stage"`
	Error      string    `json:"error"`
	DetectedAt time.Time `json:"detected_at"`
}
