package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every accepted status
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var (
	ErrValidation    = errors.New("validation failed")
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = fmt.Errorf("%w: order must have at least one item", ErrValidation)
	ErrInvalidStatus = fmt.Errorf("%w: invalid order status", ErrValidation)
)

// ParseStatus accepts exactly one of the five status names. Any status may
// follow any other.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q, want one of %v", ErrInvalidStatus, raw, Statuses)
}

// LineItem is a frozen copy of a product at checkout time
type LineItem struct {
	ProductID string `json:"productId" bson:"product_id"`
	Name      string `json:"name" bson:"name"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	UnitPrice int    `json:"unitPrice" bson:"unit_price"`
}

func (li LineItem) Subtotal() int {
	return li.UnitPrice * li.Quantity
}

// TotalOf sums unit price times quantity over items
func TotalOf(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

type Address struct {
	FirstName string `json:"firstName" bson:"first_name"`
	LastName  string `json:"lastName" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Street    string `json:"street" bson:"street"`
	City      string `json:"city" bson:"city"`
	State     string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode   string `json:"zipCode" bson:"zip_code"`
	Country   string `json:"country" bson:"country"`
}

// FullName is the customer display name
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Validate checks required fields. Phone and state are optional.
func (a Address) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"street", a.Street},
		{"city", a.City},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	}

	verr := &ValidationError{}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.add(r.field, "is required")
		}
	}
	if strings.TrimSpace(a.Email) != "" {
		if _, err := mail.ParseAddress(a.Email); err != nil {
			verr.add("email", "is not a valid address")
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid address: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Order is immutable apart from Status and UpdatedAt
type Order struct {
	ID              string     `json:"id" bson:"_id"`
	OwnerID         string     `json:"ownerId" bson:"owner_id"`
	Items           []LineItem `json:"items" bson:"items"`
	Status          Status     `json:"status" bson:"status"`
	TotalPrice      int        `json:"totalPrice" bson:"total_price"`
	ShippingAddress Address    `json:"shippingAddress" bson:"shipping_address"`
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updated_at"`
}

// ItemCount is the number of units across all line items
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o *Order) clone() *Order {
	cp := *o
	cp.Items = make([]LineItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

// Repository persists orders. Orders are never deleted.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// ListByOwner and ListAll return newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	// UpdateStatus sets status and updatedAt only and returns the order as
	// it was before the update.
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (*Order, error)
}
