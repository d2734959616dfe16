package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_UpdateStatus(t *testing.T) {
	repo := newMemRepo()
	storeOrder(repo, "o-1", "01012345678", time.Now())
	a := NewAdmin(repo)

	require.NoError(t, a.UpdateStatus(context.Background(), "o-1", StatusDelivered))
	assert.Equal(t, StatusDelivered, repo.orders["o-1"].Status)

	// Any vocabulary value may be set, including moving backwards.
	require.NoError(t, a.UpdateStatus(context.Background(), "o-1", StatusPending))
	assert.Equal(t, StatusPending, repo.orders["o-1"].Status)

	assert.ErrorIs(t, a.UpdateStatus(context.Background(), "o-1", "lost"), ErrInvalidStatus)
	assert.ErrorIs(t, a.UpdateStatus(context.Background(), "missing", StatusPaid), ErrNotFound)
	assert.ErrorIs(t, a.UpdateStatus(context.Background(), " ", StatusPaid), ErrOrderIDRequired)
}

func TestAdmin_UpdatePaymentStatus(t *testing.T) {
	repo := newMemRepo()
	storeOrder(repo, "o-1", "01012345678", time.Now())
	o := repo.orders["o-1"]
	o.Payments = []Payment{{ID: "p-1", OrderID: "o-1", Status: PaymentPending}}
	repo.orders["o-1"] = o

	a := NewAdmin(repo)
	require.NoError(t, a.UpdatePaymentStatus(context.Background(), "o-1", PaymentCompleted, "tx-9"))
	assert.Equal(t, PaymentCompleted, repo.orders["o-1"].Payments[0].Status)
	assert.Equal(t, "tx-9", repo.orders["o-1"].Payments[0].TransactionID)

	assert.ErrorIs(t, a.UpdatePaymentStatus(context.Background(), "o-1", "refunded", ""), ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "paid", "shipped", "delivered", "cancelled"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}
	_, err := ParseStatus("PENDING")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
