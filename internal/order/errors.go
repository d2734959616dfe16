package order

import (
	"errors"
	"fmt"

	"github.com/jcmexdev/labeeb-storefront/internal/customer"
)

var (
	ErrEmptyCart                = errors.New("order: cart is empty")
	ErrUnsupportedPaymentMethod = errors.New("order: unsupported payment method")
	ErrOrderIDRequired          = errors.New("order: order id is required")
	ErrPhoneRequired            = errors.New("order: phone is required")
	ErrInvalidStatus            = errors.New("order: invalid status")

	// ErrNotFound is returned by repositories for missing rows. Lookups wrap
	// it in a *NotFoundError, which still matches with errors.Is.
	ErrNotFound = errors.New("order: not found")
)

// ValidationError carries the per-field messages that blocked a submission.
type ValidationError struct {
	Fields customer.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order: customer data invalid (%d fields)", len(e.Fields))
}

// PersistenceError reports a failed write of the order header or items. The
// header never outlives a failed submission.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("order: %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// NotFoundError is returned when no order has the requested id. Suggestions
// holds ids that contain the searched term.
type NotFoundError struct {
	ID          string
	Suggestions []string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("order: %q not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// QueryError wraps a backend failure during lookup. It is never retried.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return fmt.Sprintf("order: %s: %v", e.Op, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }
