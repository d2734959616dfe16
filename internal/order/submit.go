package order

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/coordinator"
	"github.com/jcmexdev/labeeb-storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/labeeb-storefront/internal/customer"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// Saga step names, also recorded as PersistenceError.Op.
const (
	StepInsertHeader = "insert_order_header"
	StepInsertItems  = "insert_order_items"
)

type SubmitRequest struct {
	Customer      customer.Data
	Lines         []cart.LineItem
	PaymentMethod PaymentMethod
	Notes         string
	// Locale selects the language of validation messages.
	Locale i18n.Locale
}

// Submitter turns a cart into a persisted order.
type Submitter struct {
	repo      Repository
	validator *customer.Validator
	sagaLog   sagalog.Repository
	now       func() time.Time
	newID     func() string
}

type SubmitterOption func(*Submitter)

// WithSagaLog records every saga transition in log.
func WithSagaLog(log sagalog.Repository) SubmitterOption {
	return func(s *Submitter) { s.sagaLog = log }
}

func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) { s.now = now }
}

func NewSubmitter(repo Repository, v *customer.Validator, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		repo:      repo,
		validator: v,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the request and writes the order header and items as one
// unit. When the repository supports transactions both inserts share one;
// otherwise a failed item insert deletes the header it follows. The payment
// record is written afterwards and its failure only gets logged.
//
// Clearing the cart and notifying the shop are left to the caller.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	data := customer.Sanitize(req.Customer)
	if errs := s.validator.Validate(data, req.Locale); errs.HasErrors() {
		return nil, &ValidationError{Fields: errs}
	}

	method := req.PaymentMethod
	if method == "" {
		method = MethodCOD
	}
	if method != MethodCOD {
		return nil, ErrUnsupportedPaymentMethod
	}

	now := s.now().UTC()
	o := &Order{
		ID:         s.newID(),
		Status:     StatusPending,
		TotalPrice: cart.Total(req.Lines),
		Customer:   data,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	items := make([]Item, 0, len(req.Lines))
	for _, l := range req.Lines {
		items = append(items, Item{
			ID:        s.newID(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.DiscountedPrice,
		})
	}

	if err := s.persist(ctx, o, items, method); err != nil {
		return nil, err
	}
	o.Items = items

	payment := &Payment{
		ID:        s.newID(),
		OrderID:   o.ID,
		Method:    method,
		Amount:    o.TotalPrice,
		Status:    PaymentPending,
		CreatedAt: now,
	}
	if err := s.repo.InsertPayment(ctx, payment); err != nil {
		slog.WarnContext(ctx, "payment record not saved, order kept",
			"order_id", o.ID, "error", err)
	} else {
		o.Payments = []Payment{*payment}
	}

	slog.InfoContext(ctx, "order submitted",
		"order_id", o.ID, "items", len(items), "total", o.TotalPrice.String())
	return o, nil
}

func (s *Submitter) persist(ctx context.Context, o *Order, items []Item, method PaymentMethod) error {
	payload := sagaPayload(o, len(items), method)
	run := func(repo Repository) error {
		steps := []coordinator.Step{
			&insertHeaderStep{repo: repo, order: o},
			&insertItemsStep{repo: repo, items: items},
		}
		return coordinator.NewOrchestrator(o.ID, steps, s.sagaLog).WithPayload(payload).Start(ctx)
	}

	var err error
	if tx, ok := s.repo.(Transactor); ok {
		err = tx.WithinTx(ctx, run)
	} else {
		err = run(s.repo)
	}
	if err == nil {
		return nil
	}

	op := "commit order"
	var stepErr *coordinator.StepError
	if errors.As(err, &stepErr) {
		op = stepErr.Step
		err = stepErr.Err
	}
	return &PersistenceError{Op: op, Err: err}
}

func sagaPayload(o *Order, lines int, method PaymentMethod) string {
	b, err := json.Marshal(struct {
		OrderID string `json:"order_id"`
		Total   string `json:"total"`
		Lines   int    `json:"lines"`
		Method  string `json:"payment_method"`
	}{o.ID, o.TotalPrice.String(), lines, string(method)})
	if err != nil {
		return ""
	}
	return string(b)
}

type insertHeaderStep struct {
	repo  Repository
	order *Order
}

func (s *insertHeaderStep) Name() string { return StepInsertHeader }

func (s *insertHeaderStep) Execute(ctx context.Context) error {
	return s.repo.InsertOrder(ctx, s.order)
}

func (s *insertHeaderStep) Compensate(ctx context.Context) error {
	return s.repo.DeleteOrder(ctx, s.order.ID)
}

type insertItemsStep struct {
	repo  Repository
	items []Item
}

func (s *insertItemsStep) Name() string { return StepInsertItems }

func (s *insertItemsStep) Execute(ctx context.Context) error {
	return s.repo.InsertItems(ctx, s.items)
}

// Compensate is a no-op: the items step is last, and a failed batch insert
// leaves nothing behind once the header is deleted.
func (s *insertItemsStep) Compensate(context.Context) error { return nil }
