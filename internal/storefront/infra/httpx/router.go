package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/labeeb-storefront/internal/storefront/infra/httpx/middlewares"
)

// NewRouter mounts the storefront API. The /admin routes are only mounted
// when adminToken is set.
func NewRouter(handler *Handler, adminToken string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middlewares.Locale)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/items", handler.AddCartItem)
		r.Patch("/items/{productID}", handler.UpdateCartItem)
		r.Delete("/items/{productID}", handler.RemoveCartItem)
	})

	r.Post("/checkout", handler.Checkout)

	r.Get("/orders", handler.FindOrders)
	r.Get("/orders/{id}", handler.GetOrderByID)

	if adminToken != "" {
		r.Route("/admin/orders/{id}", func(r chi.Router) {
			r.Use(middlewares.AdminAuth(adminToken))
			r.Patch("/status", handler.UpdateOrderStatus)
			r.Patch("/payment", handler.UpdatePaymentStatus)
			r.Get("/saga", handler.SagaHistory)
		})
	}
	return r
}
