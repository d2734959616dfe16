package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/labeeb-storefront/internal/coordinator/sagalog"
)

// memRepo is an in-memory Repository with per-method failure injection.
type memRepo struct {
	mu       sync.Mutex
	orders   map[string]Order
	calls    []string
	failOn   map[string]error
	queries  []PhoneQuery
	products map[int64]ProductRef
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:   map[string]Order{},
		failOn:   map[string]error{},
		products: map[int64]ProductRef{},
	}
}

func (m *memRepo) hit(op string) error {
	m.calls = append(m.calls, op)
	return m.failOn[op]
}

func (m *memRepo) InsertOrder(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertOrder"); err != nil {
		return err
	}
	cp := *o
	cp.Items, cp.Payments = nil, nil
	m.orders[o.ID] = cp
	return nil
}

func (m *memRepo) InsertItems(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertItems"); err != nil {
		return err
	}
	for _, it := range items {
		o, ok := m.orders[it.OrderID]
		if !ok {
			return errors.New("foreign key violation")
		}
		if ref, ok := m.products[it.ProductID]; ok {
			r := ref
			it.Product = &r
		}
		o.Items = append(o.Items, it)
		m.orders[it.OrderID] = o
	}
	return nil
}

func (m *memRepo) InsertPayment(_ context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("InsertPayment"); err != nil {
		return err
	}
	o, ok := m.orders[p.OrderID]
	if !ok {
		return errors.New("foreign key violation")
	}
	o.Payments = append(o.Payments, *p)
	m.orders[p.OrderID] = o
	return nil
}

func (m *memRepo) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("DeleteOrder"); err != nil {
		return err
	}
	delete(m.orders, id)
	return nil
}

func (m *memRepo) GetOrder(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetOrder"); err != nil {
		return nil, err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *memRepo) FindOrdersByPhone(_ context.Context, q PhoneQuery) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if err := m.hit("FindOrdersByPhone"); err != nil {
		return nil, err
	}
	var out []Order
	for _, o := range m.orders {
		phone := o.Customer.Phone
		if (q.Mode == MatchExact && phone == q.Phone) ||
			(q.Mode == MatchSubstring && strings.Contains(phone, q.Phone)) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) FindOrderIDsLike(_ context.Context, term string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("FindOrderIDsLike"); err != nil {
		return nil, err
	}
	var out []string
	for id := range m.orders {
		if strings.Contains(id, term) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, s Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpdateStatus"); err != nil {
		return err
	}
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status, o.UpdatedAt = s, at
	m.orders[id] = o
	return nil
}

func (m *memRepo) UpdatePaymentStatus(_ context.Context, orderID string, s PaymentStatus, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpdatePaymentStatus"); err != nil {
		return err
	}
	o, ok := m.orders[orderID]
	if !ok || len(o.Payments) == 0 {
		return ErrNotFound
	}
	for i := range o.Payments {
		o.Payments[i].Status = s
		o.Payments[i].TransactionID = txID
	}
	m.orders[orderID] = o
	return nil
}

func (m *memRepo) has(op string) bool {
	for _, c := range m.calls {
		if c == op {
			return true
		}
	}
	return false
}

// txRepo adds snapshot-and-restore transactions on top of memRepo.
type txRepo struct {
	*memRepo
	commits, rollbacks int
}

func (t *txRepo) WithinTx(_ context.Context, fn func(Repository) error) error {
	t.mu.Lock()
	snapshot := make(map[string]Order, len(t.orders))
	for k, v := range t.orders {
		snapshot[k] = v
	}
	t.mu.Unlock()

	if err := fn(t.memRepo); err != nil {
		t.mu.Lock()
		t.orders = snapshot
		t.rollbacks++
		t.mu.Unlock()
		return err
	}
	t.commits++
	return nil
}

type sagaRecorder struct {
	entries []sagalog.SagaLog
}

func (r *sagaRecorder) Save(_ context.Context, e *sagalog.SagaLog) error {
	r.entries = append(r.entries, *e)
	return nil
}
