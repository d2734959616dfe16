// Package cart implements the per-session shopping cart. Stock is checked
// against the ceiling captured when a line was first added, not re-read live.
package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Rejected mutations leave the cart unchanged and return one of these.
var (
	ErrExceedsStock    = errors.New("cart: quantity exceeds stock")
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrItemNotFound    = errors.New("cart: item not in cart")
)

type Images struct {
	Thumbnails []string `json:"thumbnails"`
	Previews   []string `json:"previews"`
}

// LineItem is one product in the cart. Title is resolved for the locale that
// was active when the item was added; Stock is the ceiling snapshot.
type LineItem struct {
	ProductID       int64           `json:"id"`
	Title           string          `json:"title"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Quantity        int             `json:"quantity"`
	Stock           int             `json:"stock"`
	Images          Images          `json:"imgs"`
}

// Subtotal is DiscountedPrice * Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.DiscountedPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store is an ordered collection of line items owned by one browsing session.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	total   *decimal.Decimal
	touched time.Time
	now     func() time.Time
	holds   int
}

func NewStore() *Store {
	return &Store{now: time.Now, touched: time.Now()}
}

// AddItem merges item into an existing line for the same product, or appends
// it. The add is rejected when the resulting quantity would exceed the stock
// ceiling of the line (the existing one when merging).
func (s *Store) AddItem(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ProductID); i >= 0 {
		existing := &s.items[i]
		if existing.Quantity+item.Quantity > existing.Stock {
			return ErrExceedsStock
		}
		existing.Quantity += item.Quantity
		s.changed()
		return nil
	}

	if item.Quantity > item.Stock {
		return ErrExceedsStock
	}
	s.items = append(s.items, item)
	s.changed()
	return nil
}

// UpdateQuantity sets the quantity of an existing line if it fits the stock ceiling.
func (s *Store) UpdateQuantity(productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if quantity > s.items[i].Stock {
		return ErrExceedsStock
	}
	s.items[i].Quantity = quantity
	s.changed()
	return nil
}

// RemoveItem drops the line for productID. Removing an absent product is a no-op.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.changed()
}

// Clear empties the cart; used after an order is placed.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.changed()
}

// Deduct takes the quantities in ordered off the matching lines and drops
// lines that reach zero. Lines added or raised after ordered was read stay in
// the cart with whatever was not ordered.
func (s *Store) Deduct(ordered []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ordered {
		if i := s.indexOf(o.ProductID); i >= 0 {
			s.items[i].Quantity -= o.Quantity
		}
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.changed()
}

// Hold marks the store as in use so Registry.Sweep leaves it alone until the
// returned release is called.
func (s *Store) Hold() (release func()) {
	s.mu.Lock()
	s.holds++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.holds--
			s.touched = s.now()
			s.mu.Unlock()
		})
	}
}

func (s *Store) held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds > 0
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalPrice is the sum of every line's subtotal. The value is memoized and
// recomputed after any mutation.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total == nil {
		t := Total(s.items)
		s.total = &t
	}
	return *s.total
}

// LastTouched is the time of the last mutation.
func (s *Store) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Total sums DiscountedPrice * Quantity over lines.
func Total(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *Store) indexOf(productID int64) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// changed must be called with mu held.
func (s *Store) changed() {
	s.total = nil
	s.touched = s.now()
}
