// Package order holds the order lifecycle of the storefront: submission with
// compensation, lookup by id or phone, status projection and administrative
// status changes.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/labeeb-storefront/internal/customer"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// Status is the wire-level order status. The strings must match exactly.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s belongs to the status vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus returns ErrInvalidStatus for anything outside the vocabulary.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentCompleted || s == PaymentFailed
}

type PaymentMethod string

// MethodCOD is cash on delivery, the only accepted method.
const MethodCOD PaymentMethod = "cod"

// ProductRef is the product data joined onto an order item when it is read back.
type ProductRef struct {
	ID     int64
	NameAR string
	NameEN string
	Price  decimal.Decimal
	Images []string
}

// Title picks the product name for locale, falling back to whichever name is set.
func (p ProductRef) Title(locale i18n.Locale) string {
	if locale == i18n.English && p.NameEN != "" {
		return p.NameEN
	}
	if p.NameAR != "" {
		return p.NameAR
	}
	return p.NameEN
}

type Item struct {
	ID        string
	OrderID   string
	ProductID int64
	Quantity  int
	// Price is the unit price charged, the cart line's discounted price.
	Price   decimal.Decimal
	Product *ProductRef
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	ID            string
	OrderID       string
	Method        PaymentMethod
	Amount        decimal.Decimal
	Status        PaymentStatus
	TransactionID string
	CreatedAt     time.Time
}

// Order is a placed order with its customer snapshot. UserID stays nil for
// guest checkouts.
type Order struct {
	ID         string
	UserID     *string
	Status     Status
	TotalPrice decimal.Decimal
	Customer   customer.Data
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Items      []Item
	Payments   []Payment
}
