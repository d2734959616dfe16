// Package checkout places an order from a session's cart. It owns what
// happens around the order transaction: one submission per cart at a time,
// idempotent retries, clearing the cart and notifying the shop.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/customer"
	"github.com/jcmexdev/labeeb-storefront/internal/notify"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/cache"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// ErrSubmissionInProgress rejects a second submission for a cart whose first
// one has not returned yet.
var ErrSubmissionInProgress = errors.New("checkout: submission already in progress")

const idempotencyOperation = "checkout"

type Submitter interface {
	Submit(ctx context.Context, req order.SubmitRequest) (*order.Order, error)
}

type OrderFinder interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
}

type Notifier interface {
	OrderPlaced(ctx context.Context, o *order.Order, lines []cart.LineItem, locale i18n.Locale) (string, error)
}

type PlaceOrderRequest struct {
	SessionID      string
	IdempotencyKey string
	Customer       customer.Data
	PaymentMethod  order.PaymentMethod
	Notes          string
	Locale         i18n.Locale
}

type Result struct {
	Order       *order.Order
	WhatsAppURL string
	// Warning is a localized, non-fatal message about the notification.
	Warning string
	// Replayed is set when the idempotency key matched an earlier order.
	Replayed bool
}

type Service struct {
	carts     *cart.Registry
	submitter Submitter
	orders    OrderFinder
	notifier  Notifier
	cache     cache.Cache
	ttl       time.Duration

	mu       sync.Mutex
	inflight map[string]*semaphore.Weighted
}

func NewService(carts *cart.Registry, s Submitter, orders OrderFinder, n Notifier, c cache.Cache, idempotencyTTL time.Duration) *Service {
	return &Service{
		carts:     carts,
		submitter: s,
		orders:    orders,
		notifier:  n,
		cache:     c,
		ttl:       idempotencyTTL,
		inflight:  make(map[string]*semaphore.Weighted),
	}
}

// PlaceOrder submits the session's cart. Order errors are returned as they
// come from the submitter. On success only the submitted lines leave the
// cart, so edits made while the order was in flight are kept.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Result, error) {
	release, ok := s.acquire(req.SessionID)
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer release()

	if res, ok := s.replay(ctx, req.SessionID, req.IdempotencyKey); ok {
		return res, nil
	}

	var lines []cart.LineItem
	store, hasCart := s.carts.Get(req.SessionID)
	if hasCart {
		defer store.Hold()()
		lines = store.Items()
	}

	o, err := s.submitter.Submit(ctx, order.SubmitRequest{
		Customer:      req.Customer,
		Lines:         lines,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Locale:        req.Locale,
	})
	if err != nil {
		return nil, err
	}

	if hasCart {
		store.Deduct(lines)
	}
	s.remember(ctx, req.SessionID, req.IdempotencyKey, o.ID)

	res := &Result{Order: o}
	link, err := s.notifier.OrderPlaced(ctx, o, lines, req.Locale)
	res.WhatsAppURL = link
	if err != nil {
		slog.WarnContext(ctx, "order notification failed", "order_id", o.ID, "error", err)
		res.Warning = i18n.T(req.Locale, i18n.KeyNotificationFailed)
		if errors.Is(err, notify.ErrNoItems) {
			res.Warning = i18n.T(req.Locale, i18n.KeyNotificationNoItems)
		}
	}
	return res, nil
}

// acquire takes the session's single submission permit without waiting.
func (s *Service) acquire(sessionID string) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem, exists := s.inflight[sessionID]
	if !exists {
		sem = semaphore.NewWeighted(1)
		s.inflight[sessionID] = sem
	}
	if !sem.TryAcquire(1) {
		return nil, false
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sem.Release(1)
		delete(s.inflight, sessionID)
	}, true
}

// idempotencyKey scopes a client key to its session so one session can never
// replay another's order.
func (s *Service) idempotencyKey(sessionID, key string) string {
	return s.cache.GenerateKey(idempotencyOperation, sessionID+":"+key)
}

func (s *Service) replay(ctx context.Context, sessionID, key string) (*Result, bool) {
	if key == "" {
		return nil, false
	}
	id, err := s.cache.Get(ctx, s.idempotencyKey(sessionID, key))
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		return nil, false
	}
	if id == "" {
		return nil, false
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "idempotent order could not be loaded", "order_id", id, "error", err)
		return nil, false
	}
	slog.InfoContext(ctx, "checkout replayed", "order_id", id)
	return &Result{Order: o, Replayed: true}, true
}

func (s *Service) remember(ctx context.Context, sessionID, key, orderID string) {
	if key == "" {
		return
	}
	if err := s.cache.Set(ctx, s.idempotencyKey(sessionID, key), orderID, s.ttl); err != nil {
		slog.WarnContext(ctx, "idempotency key not stored", "order_id", orderID, "error", err)
	}
}
