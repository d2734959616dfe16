package notify

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// Tracker counts the notifications a consumer has handled. It is safe for
// concurrent use by several workers.
type Tracker struct {
	mu                sync.Mutex
	totalOrders       int64
	revenue           decimal.Decimal
	productQuantities map[int64]int64
}

func NewTracker() *Tracker {
	return &Tracker{productQuantities: make(map[int64]int64)}
}

func (t *Tracker) Record(ev OrderPlaced) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalOrders++
	t.revenue = t.revenue.Add(ev.Total)
	for _, it := range ev.Items {
		t.productQuantities[it.ProductID] += int64(it.Quantity)
	}
}

func (t *Tracker) TotalOrders() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalOrders
}

func (t *Tracker) Revenue() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revenue
}

func (t *Tracker) ProductQuantity(productID int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.productQuantities[productID]
}

// LogSummary writes the totals, typically once on shutdown.
func (t *Tracker) LogSummary(logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()

	logger.Info("notification summary",
		"total_orders", t.totalOrders,
		"revenue", t.revenue.StringFixed(2),
		"distinct_products", len(t.productQuantities))
}
