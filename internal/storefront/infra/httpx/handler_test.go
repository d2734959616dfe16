package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/checkout"
	"github.com/jcmexdev/labeeb-storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/labeeb-storefront/internal/customer"
	"github.com/jcmexdev/labeeb-storefront/internal/notify"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/cache"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/labeeb-storefront/internal/storage/sqlite"
)

const adminToken = "s3cret"

type recorder struct {
	mu     sync.Mutex
	events []notify.OrderPlaced
}

func (r *recorder) Notify(_ context.Context, ev notify.OrderPlaced) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) snapshot() []notify.OrderPlaced {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.OrderPlaced(nil), r.events...)
}

type testServer struct {
	t        *testing.T
	srv      *httptest.Server
	notified *recorder
	session  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := sqlite.Open(filepath.Join(dir, "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	sagaLog, err := sqlite.OpenSagaLog(filepath.Join(dir, "sagalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sagaLog.Close() })

	for _, p := range []catalog.Product{
		{ID: 1, NameAR: "عسل", NameEN: "Honey", Price: decimal.RequireFromString("250"), OfferPrice: decimal.RequireFromString("199.99"), StockQuantity: 5, IsBestSeller: true},
		{ID: 2, NameAR: "تمر", NameEN: "Dates", Price: decimal.RequireFromString("80"), StockQuantity: 3},
		{ID: 3, NameAR: "زيت", NameEN: "Oil", Price: decimal.RequireFromString("60"), StockQuantity: 0},
	} {
		require.NoError(t, store.UpsertProduct(ctx, &p))
	}

	lookup := order.NewLookup(store)
	carts := cart.NewRegistry()
	rec := &recorder{}
	h := NewHandler(Deps{
		Catalog: catalog.NewService(store),
		Carts:   carts,
		Checkout: checkout.NewService(
			carts,
			order.NewSubmitter(store, customer.NewValidator(), order.WithSagaLog(sagaLog)),
			lookup,
			notify.NewService(notify.Config{Recipient: "01065223412", Enabled: true}, rec),
			cache.NewMemoryCache("test"),
			time.Hour,
		),
		Lookup:  lookup,
		Admin:   order.NewAdmin(store),
		SagaLog: sagaLog,
		Health:  store.Ping,
	})

	srv := httptest.NewServer(NewRouter(h, adminToken))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, notified: rec}
}

func (ts *testServer) do(method, path string, body any, headers ...string) (*http.Response, []byte) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	if ts.session != "" {
		req.Header.Set(constants.HeaderXCartSession, ts.session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(ts.t, err)
	if id := resp.Header.Get(constants.HeaderXCartSession); id != "" {
		ts.session = id
	}
	return resp, out.Bytes()
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func validCustomer() customer.Data {
	return customer.Data{
		FirstName:     "Mona",
		LastName:      "Adel",
		Phone:         "01012345678",
		StreetAddress: "5 Nile Corniche",
		City:          "Giza",
		State:         "Giza",
		Postcode:      "12511",
	}
}

func (ts *testServer) placeOrder() OrderResponse {
	ts.t.Helper()
	resp, _ := ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 1, Quantity: 2})
	require.Equal(ts.t, http.StatusOK, resp.StatusCode)

	resp, body := ts.do(http.MethodPost, "/checkout", CheckoutRequest{Customer: validCustomer()})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[CheckoutResponse](ts.t, body).Order
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestProducts_Localized(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(http.MethodGet, "/products?locale=en", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "en", resp.Header.Get("Content-Language"))
	products := decode[[]ProductResponse](t, body)
	require.Len(t, products, 3)
	assert.Equal(t, "Honey", products[0].Title)
	assert.Equal(t, "199.99", products[0].DiscountedPrice.String())
	assert.False(t, products[2].InStock)

	_, body = ts.do(http.MethodGet, "/products/2", nil, "Accept-Language", "ar-EG,ar;q=0.9")
	assert.Equal(t, "تمر", decode[ProductResponse](t, body).Title)

	_, body = ts.do(http.MethodGet, "/products?best_seller=true", nil)
	assert.Len(t, decode[[]ProductResponse](t, body), 1)

	resp, body = ts.do(http.MethodGet, "/products/42?locale=en", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "product_not_found", decode[ErrorResponse](t, body).Error)
}

func TestCart_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, ts.session, "a session is allocated on first use")
	c := decode[CartResponse](t, body)
	assert.Equal(t, ts.session, c.SessionID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)

	_, body = ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 2, Quantity: 2})
	assert.Equal(t, "359.99", decode[CartResponse](t, body).TotalPrice.String())

	_, body = ts.do(http.MethodPatch, "/cart/items/1", UpdateCartItemRequest{Quantity: 3})
	c = decode[CartResponse](t, body)
	assert.Equal(t, 3, c.Items[0].Quantity)

	_, body = ts.do(http.MethodDelete, "/cart/items/2", nil)
	assert.Len(t, decode[CartResponse](t, body).Items, 1)

	_, body = ts.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, 1, decode[CartResponse](t, body).Count)

	_, body = ts.do(http.MethodDelete, "/cart", nil)
	assert.Empty(t, decode[CartResponse](t, body).Items)
}

func TestCart_StockRules(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"out of stock", http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 3}, http.StatusConflict, "out_of_stock"},
		{"beyond stock", http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 2, Quantity: 4}, http.StatusConflict, "exceeds_stock"},
		{"zero quantity", http.MethodPatch, "/cart/items/2", UpdateCartItemRequest{Quantity: 0}, http.StatusBadRequest, "invalid_quantity"},
		{"not in cart", http.MethodPatch, "/cart/items/1", UpdateCartItemRequest{Quantity: 1}, http.StatusNotFound, "item_not_in_cart"},
		{"bad id", http.MethodPatch, "/cart/items/abc", UpdateCartItemRequest{Quantity: 1}, http.StatusBadRequest, "invalid_productID"},
	}

	resp, _ := ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 2, Quantity: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			assert.Equal(t, tt.code, decode[ErrorResponse](t, body).Error)
		})
	}

	_, body := ts.do(http.MethodGet, "/cart", nil)
	c := decode[CartResponse](t, body)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity, "rejected changes leave the cart as it was")
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(http.MethodPost, "/checkout?locale=en", CheckoutRequest{Customer: validCustomer()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, body).Error)
}

func TestCheckout_ValidationKeepsCart(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 1})

	bad := validCustomer()
	bad.Phone = "12"
	resp, body := ts.do(http.MethodPost, "/checkout?locale=en", CheckoutRequest{Customer: bad})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	e := decode[ErrorResponse](t, body)
	assert.Equal(t, "validation_failed", e.Error)
	assert.Contains(t, e.Fields, "phone")

	_, body = ts.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, 1, decode[CartResponse](t, body).Count)
}

func TestCheckout_UnsupportedPayment(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 1})

	resp, body := ts.do(http.MethodPost, "/checkout", CheckoutRequest{Customer: validCustomer(), PaymentMethod: "card"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unsupported_payment_method", decode[ErrorResponse](t, body).Error)
}

func TestCheckout_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 1, Quantity: 2})

	resp, body := ts.do(http.MethodPost, "/checkout?locale=en", CheckoutRequest{Customer: validCustomer(), Notes: "ring twice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	res := decode[CheckoutResponse](t, body)

	assert.NotEmpty(t, res.Order.ID)
	assert.Equal(t, order.StatusPending, res.Order.Status)
	assert.Equal(t, "399.98", res.Order.TotalPrice.String())
	require.Len(t, res.Order.Items, 1)
	require.Len(t, res.Order.Payments, 1)
	assert.Equal(t, order.PaymentPending, res.Order.Payments[0].Status)
	assert.Contains(t, res.WhatsAppURL, "https://wa.me/201065223412?text=")
	assert.Empty(t, res.Warning)
	assert.Equal(t, order.StatusPending, res.Order.Tracking.Status)

	events := ts.notified.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, res.Order.ID, events[0].OrderID)

	_, body = ts.do(http.MethodGet, "/cart", nil)
	assert.Zero(t, decode[CartResponse](t, body).Count, "cart is cleared after checkout")
}

func TestCheckout_IdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/cart/items", AddCartItemRequest{ProductID: 2})

	req := CheckoutRequest{Customer: validCustomer()}
	resp, body := ts.do(http.MethodPost, "/checkout", req, constants.HeaderXIdempotencyKey, "retry-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	first := decode[CheckoutResponse](t, body)

	resp, body = ts.do(http.MethodPost, "/checkout", req, constants.HeaderXIdempotencyKey, "retry-1")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	second := decode[CheckoutResponse](t, body)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, ts.notified.snapshot(), 1)
}

func TestOrders_Lookup(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.placeOrder()

	resp, body := ts.do(http.MethodGet, "/orders/"+placed.ID+"?locale=en", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[OrderResponse](t, body)
	assert.Equal(t, placed.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Honey", got.Items[0].Title)
	assert.Equal(t, "399.98", got.Items[0].Subtotal.String())

	resp, body = ts.do(http.MethodGet, "/orders?phone=0101%20234%205678", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[OrdersResponse](t, body)
	require.Len(t, list.Orders, 1)
	assert.Empty(t, list.Message)

	_, body = ts.do(http.MethodGet, "/orders?phone=01999999999&locale=en", nil)
	list = decode[OrdersResponse](t, body)
	assert.Empty(t, list.Orders)
	assert.Equal(t, "No orders found for this phone number", list.Message)

	resp, body = ts.do(http.MethodGet, "/orders?phone=", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "phone_required", decode[ErrorResponse](t, body).Error)
}

func TestOrders_NotFoundSuggestions(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.placeOrder()

	resp, body := ts.do(http.MethodGet, "/orders/"+placed.ID[:8], nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	e := decode[ErrorResponse](t, body)
	assert.Equal(t, "order_not_found", e.Error)
	assert.Equal(t, []string{placed.ID}, e.Suggestions)

	resp, body = ts.do(http.MethodGet, "/orders/nothing-like-it", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, decode[ErrorResponse](t, body).Suggestions)
}

func TestAdmin(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.placeOrder()
	auth := []string{"Authorization", "Bearer " + adminToken}

	resp, _ := ts.do(http.MethodPatch, "/admin/orders/"+placed.ID+"/status", UpdateStatusRequest{Status: "shipped"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.do(http.MethodPatch, "/admin/orders/"+placed.ID+"/status", UpdateStatusRequest{Status: "lost"}, auth...)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_status", decode[ErrorResponse](t, body).Error)

	resp, body = ts.do(http.MethodPatch, "/admin/orders/"+placed.ID+"/status", UpdateStatusRequest{Status: "shipped"}, auth...)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	o := decode[OrderResponse](t, body)
	assert.Equal(t, order.StatusShipped, o.Status)
	require.Len(t, o.Tracking.Steps, 4)
	assert.True(t, o.Tracking.Steps[1].Completed, "paid is complete once shipped")
	assert.True(t, o.Tracking.Steps[2].Current)
	assert.False(t, o.Tracking.Steps[3].Completed)

	resp, body = ts.do(http.MethodPatch, "/admin/orders/"+placed.ID+"/payment",
		UpdatePaymentRequest{Status: "completed", TransactionID: "tx-9"}, auth...)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	o = decode[OrderResponse](t, body)
	assert.Equal(t, order.PaymentCompleted, o.Payments[0].Status)
	assert.Equal(t, "tx-9", o.Payments[0].TransactionID)

	resp, _ = ts.do(http.MethodPatch, "/admin/orders/missing/status", UpdateStatusRequest{Status: "paid"}, auth...)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdmin_SagaHistory(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.placeOrder()

	resp, body := ts.do(http.MethodGet, "/admin/orders/"+placed.ID+"/saga", nil, "Authorization", "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	entries := decode[[]sagalog.SagaLog](t, body)
	require.NotEmpty(t, entries)
	assert.Equal(t, sagalog.StatusStarted, entries[0].Status)
	assert.Equal(t, sagalog.StatusCompleted, entries[len(entries)-1].Status)
}

func TestAdminRoutesHiddenWithoutToken(t *testing.T) {
	h := NewHandler(Deps{})
	srv := httptest.NewServer(NewRouter(h, ""))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/orders/x/saga", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
