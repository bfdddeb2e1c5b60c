package email

import (
	"fmt"

	"github.com/keighl/postmark"
)

// Service sends transactional email through Postmark
type Service struct {
	client *postmark.Client
	from   string
}

// NewService creates a new email service. baseURL overrides the Postmark
// API endpoint when non-empty.
func NewService(serverToken, from, baseURL string) *Service {
	client := postmark.NewClient(serverToken, "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &Service{
		client: client,
		from:   from,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, customerName, orderID string, total int, items []OrderItem) error {
	html, text, err := BuildOrderConfirmationBody(customerName, orderID, total, items)
	if err != nil {
		return fmt.Errorf("failed to render confirmation: %w", err)
	}
	subject := fmt.Sprintf("Order confirmation (order %s)", shortID(orderID))
	return s.send(to, subject, html, text, "order-confirmation")
}

// SendStatusUpdate tells the customer their order moved to a new status
func (s *Service) SendStatusUpdate(to, customerName, orderID, from, status string) error {
	html, text, err := BuildStatusUpdateBody(customerName, orderID, from, status)
	if err != nil {
		return fmt.Errorf("failed to render status update: %w", err)
	}
	subject := fmt.Sprintf("Your order %s is now %s", shortID(orderID), status)
	return s.send(to, subject, html, text, "order-status")
}

func (s *Service) send(to, subject, html, text, tag string) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     s.from,
		To:       to,
		Subject:  subject,
		HtmlBody: html,
		TextBody: text,
		Tag:      tag,
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
