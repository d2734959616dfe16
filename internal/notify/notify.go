// Package notify tells the shop owner about new orders through a WhatsApp
// deep link. Delivery is best effort and sits outside the order transaction:
// a failure here never undoes a placed order.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// ErrNoItems means the order summary had no products to list.
var ErrNoItems = errors.New("notify: order has no items to report")

// OrderPlaced is the message handed to a Notifier.
type OrderPlaced struct {
	OrderID   string          `json:"order_id"`
	Recipient string          `json:"recipient"`
	Message   string          `json:"message"`
	URL       string          `json:"whatsapp_url"`
	Items     []EventItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	PlacedAt  time.Time       `json:"placed_at"`
}

type EventItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Notifier delivers an OrderPlaced event somewhere: a log, a queue, the OS.
type Notifier interface {
	Notify(ctx context.Context, ev OrderPlaced) error
}

// LogNotifier writes the deep link to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, ev OrderPlaced) error {
	slog.InfoContext(ctx, "order notification",
		"order_id", ev.OrderID, "recipient", ev.Recipient, "whatsapp_url", ev.URL)
	return nil
}

type Config struct {
	// Recipient is the shop owner's WhatsApp number in any common format.
	Recipient string
	Enabled   bool
}

// Service composes order notifications and hands them to a Notifier.
type Service struct {
	recipient string
	enabled   bool
	notifier  Notifier
	now       func() time.Time
}

func NewService(cfg Config, n Notifier) *Service {
	return &Service{
		recipient: FormatRecipient(cfg.Recipient),
		enabled:   cfg.Enabled,
		notifier:  n,
		now:       time.Now,
	}
}

// OrderPlaced notifies the shop about o and returns the wa.me link. When
// notifications are disabled it returns an empty link and no error. The link
// is returned even if the notifier fails.
func (s *Service) OrderPlaced(ctx context.Context, o *order.Order, lines []cart.LineItem, locale i18n.Locale) (string, error) {
	if !s.enabled {
		return "", nil
	}

	d := DetailsFromOrder(o, lines, locale)
	if len(d.Items) == 0 {
		return "", ErrNoItems
	}

	now := s.now()
	msg := FormatMessage(d, now)
	ev := OrderPlaced{
		OrderID:   o.ID,
		Recipient: s.recipient,
		Message:   msg,
		URL:       WhatsAppURL(msg, s.recipient),
		Total:     o.TotalPrice,
		PlacedAt:  now.UTC(),
	}
	for _, it := range d.Items {
		ev.Items = append(ev.Items, EventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	if err := s.notifier.Notify(ctx, ev); err != nil {
		return ev.URL, fmt.Errorf("notify: order %s: %w", o.ID, err)
	}
	return ev.URL, nil
}
