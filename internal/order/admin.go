package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Admin applies status decisions made by shop staff.
type Admin struct {
	repo Repository
	now  func() time.Time
}

func NewAdmin(repo Repository) *Admin {
	return &Admin{repo: repo, now: time.Now}
}

// UpdateStatus sets any value of the status vocabulary; there is no
// transition graph to enforce.
func (a *Admin) UpdateStatus(ctx context.Context, id string, status Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrOrderIDRequired
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := a.repo.UpdateStatus(ctx, id, status, a.now().UTC()); err != nil {
		return fmt.Errorf("order: update status of %s: %w", id, err)
	}
	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", status)
	return nil
}

func (a *Admin) UpdatePaymentStatus(ctx context.Context, orderID string, status PaymentStatus, transactionID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return ErrOrderIDRequired
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := a.repo.UpdatePaymentStatus(ctx, orderID, status, strings.TrimSpace(transactionID)); err != nil {
		return fmt.Errorf("order: update payment of %s: %w", orderID, err)
	}
	slog.InfoContext(ctx, "payment status updated", "order_id", orderID, "status", status)
	return nil
}
