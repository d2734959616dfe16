package order

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultLookupTimeout = 5 * time.Second
	maxSuggestions       = 5
)

// PhoneMatcher is one tier of the phone search. Build returns false when the
// tier does not apply to the cleaned input.
type PhoneMatcher struct {
	Name  string
	Build func(phone string) (PhoneQuery, bool)
}

var (
	ExactPhone = PhoneMatcher{Name: "exact", Build: func(p string) (PhoneQuery, bool) {
		return PhoneQuery{Phone: p, Mode: MatchExact}, true
	}}

	// WithoutPlusPhone finds rows stored as "2010..." when the input was "+2010...".
	WithoutPlusPhone = PhoneMatcher{Name: "without_plus", Build: func(p string) (PhoneQuery, bool) {
		if !strings.HasPrefix(p, "+") {
			return PhoneQuery{}, false
		}
		return PhoneQuery{Phone: strings.TrimPrefix(p, "+"), Mode: MatchExact}, true
	}}

	SubstringPhone = PhoneMatcher{Name: "substring", Build: func(p string) (PhoneQuery, bool) {
		return PhoneQuery{Phone: p, Mode: MatchSubstring}, true
	}}

	// DefaultPhoneMatchers is the tier order used unless overridden.
	DefaultPhoneMatchers = []PhoneMatcher{ExactPhone, WithoutPlusPhone, SubstringPhone}
)

// Lookup finds orders for the tracking page.
type Lookup struct {
	repo     Repository
	timeout  time.Duration
	matchers []PhoneMatcher
}

type LookupOption func(*Lookup)

// WithTimeout bounds every lookup. Non-positive values keep the default.
func WithTimeout(d time.Duration) LookupOption {
	return func(l *Lookup) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func WithPhoneMatchers(m ...PhoneMatcher) LookupOption {
	return func(l *Lookup) { l.matchers = m }
}

func NewLookup(repo Repository, opts ...LookupOption) *Lookup {
	l := &Lookup{
		repo:     repo,
		timeout:  DefaultLookupTimeout,
		matchers: DefaultPhoneMatchers,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetByID returns the order with id. A miss yields a *NotFoundError with up
// to five ids containing the term.
func (l *Lookup) GetByID(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrOrderIDRequired
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	o, err := l.repo.GetOrder(ctx, id)
	switch {
	case err == nil:
		return o, nil
	case errors.Is(err, ErrNotFound):
		nf := &NotFoundError{ID: id}
		ids, serr := l.repo.FindOrderIDsLike(ctx, id, maxSuggestions)
		if serr != nil {
			slog.WarnContext(ctx, "order suggestions unavailable", "order_id", id, "error", serr)
		} else {
			nf.Suggestions = ids
		}
		return nil, nf
	default:
		return nil, &QueryError{Op: "get order", Err: err}
	}
}

// GetByPhone runs the matcher tiers in order and returns the first non-empty
// result. No match is an empty slice, not an error. The first backend failure
// stops the chain.
func (l *Lookup) GetByPhone(ctx context.Context, phone string) ([]Order, error) {
	p := CleanPhone(phone)
	if p == "" {
		return nil, ErrPhoneRequired
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	for _, m := range l.matchers {
		q, ok := m.Build(p)
		if !ok {
			continue
		}
		orders, err := l.repo.FindOrdersByPhone(ctx, q)
		if err != nil {
			return nil, &QueryError{Op: "find orders by phone (" + m.Name + ")", Err: err}
		}
		if len(orders) > 0 {
			slog.DebugContext(ctx, "orders found by phone", "tier", m.Name, "count", len(orders))
			return orders, nil
		}
	}
	return []Order{}, nil
}

// CleanPhone keeps only digits and '+'.
func CleanPhone(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, s)
}
