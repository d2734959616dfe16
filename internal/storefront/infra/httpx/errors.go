package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/checkout"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// writeDomainError maps an error from the storefront services onto a status
// code and a localized body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	locale := i18n.FromContext(r.Context())
	msg := func(key string) string { return i18n.T(locale, key) }

	var (
		ve *order.ValidationError
		nf *order.NotFoundError
		pe *order.PersistenceError
		qe *order.QueryError
	)

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: msg(i18n.KeyCorrectErrors),
			Fields:  ve.Fields,
		})
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "empty_cart", msg(i18n.KeyEmptyCart))
	case errors.Is(err, order.ErrUnsupportedPaymentMethod):
		writeError(w, http.StatusBadRequest, "unsupported_payment_method", msg(i18n.KeyUnsupportedPayment))
	case errors.Is(err, order.ErrOrderIDRequired):
		writeError(w, http.StatusBadRequest, "order_id_required", msg(i18n.KeyOrderIDRequired))
	case errors.Is(err, order.ErrPhoneRequired):
		writeError(w, http.StatusBadRequest, "phone_required", msg(i18n.KeyPhoneRequired))
	case errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", msg(i18n.KeyInvalidStatus))
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		writeError(w, http.StatusConflict, "submission_in_progress", msg(i18n.KeySubmissionInProgress))
	case errors.As(err, &nf):
		body := ErrorResponse{Error: "order_not_found", Message: msg(i18n.KeyOrderNotFound)}
		if len(nf.Suggestions) > 0 {
			body.Message = msg(i18n.KeyOrderSuggestions)
			body.Suggestions = nf.Suggestions
		}
		writeJSON(w, http.StatusNotFound, body)
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", msg(i18n.KeyOrderNotFound))
	case errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", msg(i18n.KeyProductNotFound))
	case errors.Is(err, catalog.ErrOutOfStock):
		writeError(w, http.StatusConflict, "out_of_stock", msg(i18n.KeyOutOfStock))
	case errors.Is(err, cart.ErrExceedsStock):
		writeError(w, http.StatusConflict, "exceeds_stock", msg(i18n.KeyExceedsStock))
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "invalid_quantity", msg(i18n.KeyInvalidQuantity))
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item_not_in_cart", msg(i18n.KeyItemNotInCart))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", msg(i18n.KeyTimeout))
	case errors.As(err, &pe):
		slog.ErrorContext(r.Context(), "order persistence failed", "op", pe.Op, "error", pe.Err)
		writeError(w, http.StatusBadGateway, "order_failed", msg(i18n.KeyOrderError))
	case errors.As(err, &qe):
		slog.ErrorContext(r.Context(), "order query failed", "op", qe.Op, "error", qe.Err)
		writeError(w, http.StatusBadGateway, "query_failed", msg(i18n.KeyQueryFailed))
	default:
		slog.ErrorContext(r.Context(), "unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", msg(i18n.KeyUnexpected))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
