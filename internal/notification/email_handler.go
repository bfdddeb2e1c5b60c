package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// Mailer is the subset of email.Service the notifier uses
type Mailer interface {
	SendOrderConfirmation(to, customerName, orderID string, total int, items []email.OrderItem) error
	SendStatusUpdate(to, customerName, orderID, from, status string) error
}

// EmailHandler turns journal events from Kafka into customer emails
type EmailHandler struct {
	mailer Mailer
}

func NewEmailHandler(mailer Mailer) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

// HandleEvent processes an event from Kafka. Malformed messages are logged
// and skipped; send failures are returned so the consumer can retry.
func (h *EmailHandler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Skipping malformed event %s: %v", key, err)
		return nil
	}

	switch event.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(event)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(event)
	}
	return nil
}

func (h *EmailHandler) handleOrderPlaced(event store.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event %s: %v", event.ID, err)
		return nil
	}
	if e.CustomerEmail == "" {
		log.Printf("[Notifier] Order %s has no customer email, skipping", e.OrderID)
		return nil
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderID, e.OwnerID)

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err := h.mailer.SendOrderConfirmation(e.CustomerEmail, e.CustomerName, e.OrderID, e.Total, items); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", e.CustomerEmail, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", e.CustomerEmail, e.OrderID)
	return nil
}

func (h *EmailHandler) handleStatusChanged(event store.Event) error {
	var e order.OrderStatusChanged
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderStatusChanged event %s: %v", event.ID, err)
		return nil
	}
	if e.CustomerEmail == "" || e.From == e.To {
		return nil
	}

	if err := h.mailer.SendStatusUpdate(e.CustomerEmail, e.CustomerName, e.OrderID, string(e.From), string(e.To)); err != nil {
		log.Printf("[Notifier] Failed to send status update to %s: %v", e.CustomerEmail, err)
		return err
	}

	log.Printf("[Notifier] Status update (%s) sent to %s for order %s", e.To, e.CustomerEmail, e.OrderID)
	return nil
}
