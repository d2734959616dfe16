package middlewares

import (
	"net/http"

	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// Locale resolves the display language from ?locale= first, then
// Accept-Language, and stores it in the request context.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := i18n.Negotiate(r.URL.Query().Get("locale"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", string(locale))
		next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), locale)))
	})
}
