package order

import (
	"context"
	"time"
)

// PhoneMatchMode selects how FindOrdersByPhone compares customer_phone.
type PhoneMatchMode int

const (
	MatchExact PhoneMatchMode = iota
	// MatchSubstring is a case-insensitive containment match.
	MatchSubstring
)

type PhoneQuery struct {
	Phone string
	Mode  PhoneMatchMode
}

// Repository is the persistence surface the order services need.
// Reads return orders with items, joined product refs and payments.
type Repository interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, items []Item) error
	InsertPayment(ctx context.Context, p *Payment) error
	// DeleteOrder removes the header and, by cascade, its items and payments.
	DeleteOrder(ctx context.Context, id string) error

	// GetOrder returns ErrNotFound when no row matches.
	GetOrder(ctx context.Context, id string) (*Order, error)
	// FindOrdersByPhone returns matches newest first.
	FindOrdersByPhone(ctx context.Context, q PhoneQuery) ([]Order, error)
	FindOrderIDsLike(ctx context.Context, term string, limit int) ([]string, error)

	// UpdateStatus and UpdatePaymentStatus return ErrNotFound when nothing changed.
	UpdateStatus(ctx context.Context, id string, s Status, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, orderID string, s PaymentStatus, transactionID string) error
}

// Transactor is implemented by repositories that can run several writes
// atomically. fn receives a Repository bound to the transaction; returning an
// error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error
}
