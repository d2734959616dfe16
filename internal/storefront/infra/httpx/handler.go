package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/checkout"
	"github.com/jcmexdev/labeeb-storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/interceptors/constants"
)

// Deps are the services the handler routes requests to. SagaLog and Health
// may be nil.
type Deps struct {
	Catalog   *catalog.Service
	Carts     *cart.Registry
	Checkout  *checkout.Service
	Lookup    *order.Lookup
	Projector *order.Projector
	Admin     *order.Admin
	SagaLog   sagalog.Reader
	Health    func(ctx context.Context) error
}

// Handler serves the storefront API: catalog, cart, checkout, tracking and
// the staff endpoints.
type Handler struct {
	catalog   *catalog.Service
	carts     *cart.Registry
	checkout  *checkout.Service
	lookup    *order.Lookup
	projector *order.Projector
	admin     *order.Admin
	sagaLog   sagalog.Reader
	health    func(ctx context.Context) error
}

func NewHandler(d Deps) *Handler {
	projector := d.Projector
	if projector == nil {
		projector = order.NewProjector()
	}
	return &Handler{
		catalog:   d.Catalog,
		carts:     d.Carts,
		checkout:  d.Checkout,
		lookup:    d.Lookup,
		projector: projector,
		admin:     d.Admin,
		sagaLog:   d.SagaLog,
		health:    d.Health,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListProducts supports ?best_seller=true and ?limited_offer=true.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		BestSeller:   q.Get("best_seller") == "true",
		LimitedOffer: q.Get("limited_offer") == "true",
	}

	products, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	locale := i18n.FromContext(r.Context())
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p, locale)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*p, i18n.FromContext(r.Context())))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)
	writeJSON(w, http.StatusOK, mapCart(id, store))
}

// AddCartItem adds quantity units (default 1) of a catalog product. The
// line is built from the current catalog data, never from the request.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	line, err := cart.LineItemFromProduct(*p, i18n.FromContext(r.Context()), req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	id, store := h.session(w, r)
	if err := store.AddItem(line); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(id, store))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := int64Param(w, r, "productID")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	id, store := h.session(w, r)
	if err := store.UpdateQuantity(productID, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(id, store))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := int64Param(w, r, "productID")
	if !ok {
		return
	}
	id, store := h.session(w, r)
	store.RemoveItem(productID)
	writeJSON(w, http.StatusOK, mapCart(id, store))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)
	store.Clear()
	writeJSON(w, http.StatusOK, mapCart(id, store))
}

// Checkout places an order from the session's cart. A repeated
// X-Idempotency-Key returns the order created by the first request.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = string(order.MethodCOD)
	}

	ctx := r.Context()
	locale := i18n.FromContext(ctx)
	sessionID := r.Header.Get(constants.HeaderXCartSession)

	slog.InfoContext(ctx, "checkout requested",
		"request_id", interceptors.RequestIDFromContext(ctx),
		"session_id", sessionID)

	res, err := h.checkout.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		SessionID:      sessionID,
		IdempotencyKey: interceptors.IdempotencyKeyFromContext(ctx),
		Customer:       req.Customer,
		PaymentMethod:  order.PaymentMethod(req.PaymentMethod),
		Notes:          req.Notes,
		Locale:         locale,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, mapCheckout(res, h.projector, locale))
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	o, err := h.lookup.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o, h.projector, i18n.FromContext(r.Context())))
}

// FindOrders looks orders up by ?phone=. An unknown phone is a 200 with an
// empty list and a message.
func (h *Handler) FindOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.lookup.GetByPhone(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	locale := i18n.FromContext(r.Context())
	resp := OrdersResponse{Orders: mapOrders(orders, h.projector, locale)}
	if len(orders) == 0 {
		resp.Message = i18n.T(locale, i18n.KeyNoOrdersForPhone)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.admin.UpdateStatus(r.Context(), id, status); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeOrder(w, r, id)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.admin.UpdatePaymentStatus(r.Context(), id, order.PaymentStatus(req.Status), req.TransactionID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeOrder(w, r, id)
}

// SagaHistory returns the submission log of an order, oldest entry first.
func (h *Handler) SagaHistory(w http.ResponseWriter, r *http.Request) {
	if h.sagaLog == nil {
		writeError(w, http.StatusNotImplemented, "saga_log_disabled", "")
		return
	}
	entries, err := h.sagaLog.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, &order.QueryError{Op: "saga history", Err: err})
		return
	}
	if entries == nil {
		entries = []sagalog.SagaLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, id string) {
	o, err := h.lookup.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o, h.projector, i18n.FromContext(r.Context())))
}

// session resolves the caller's cart from X-Cart-Session, creating one when
// the header is missing or unknown. The id is echoed back on every response.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, *cart.Store) {
	id, store := h.carts.GetOrCreate(r.Header.Get(constants.HeaderXCartSession))
	w.Header().Set(constants.HeaderXCartSession, id)
	return id, store
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, err.Error())
		return 0, false
	}
	return v, true
}
