package command

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
)

// Payloads pushed to WebSocket clients

type NewOrderAlert struct {
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	Total        int       `json:"total"`
	ItemCount    int       `json:"itemCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LowStockAlert struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

type StatusChange struct {
	OrderID        string       `json:"orderId"`
	Status         order.Status `json:"status"`
	PreviousStatus order.Status `json:"previousStatus"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type ProductRemoved struct {
	ProductID string `json:"productId"`
}
