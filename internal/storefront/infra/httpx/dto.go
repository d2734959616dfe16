package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/checkout"
	"github.com/jcmexdev/labeeb-storefront/internal/customer"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

type ProductResponse struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	NameAR           string          `json:"name_ar"`
	NameEN           string          `json:"name_en"`
	Price            decimal.Decimal `json:"price"`
	DiscountedPrice  decimal.Decimal `json:"discountedPrice"`
	StockQuantity    int             `json:"stock_quantity"`
	InStock          bool            `json:"in_stock"`
	ImageURLs        []string        `json:"image_url"`
	IsBestSeller     bool            `json:"is_best_seller"`
	LimitedTimeOffer bool            `json:"limited_time_offer"`
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	SessionID  string          `json:"session_id"`
	Items      []cart.LineItem `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Count      int             `json:"count"`
}

type CheckoutRequest struct {
	Customer      customer.Data `json:"customer"`
	PaymentMethod string        `json:"payment_method"`
	Notes         string        `json:"notes"`
}

type CheckoutResponse struct {
	Order       OrderResponse `json:"order"`
	WhatsAppURL string        `json:"whatsapp_url,omitempty"`
	Warning     string        `json:"warning,omitempty"`
	Replayed    bool          `json:"replayed"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	Status     order.Status        `json:"status"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Customer   customer.Data       `json:"customer"`
	Notes      string              `json:"notes,omitempty"`
	Items      []OrderItemResponse `json:"items"`
	Payments   []PaymentResponse   `json:"payments"`
	Tracking   order.Projection    `json:"tracking"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title,omitempty"`
	Images    []string        `json:"images,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type PaymentResponse struct {
	Method        order.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        order.PaymentStatus `json:"payment_status"`
	TransactionID string              `json:"transaction_id,omitempty"`
}

type OrdersResponse struct {
	Orders  []OrderResponse `json:"orders"`
	Message string          `json:"message,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdatePaymentRequest struct {
	Status        string `json:"payment_status"`
	TransactionID string `json:"transaction_id"`
}

type ErrorResponse struct {
	Error       string            `json:"error"`
	Message     string            `json:"message,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

func mapProduct(p catalog.Product, locale i18n.Locale) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Title:            p.Title(locale),
		Description:      p.Description(locale),
		NameAR:           p.NameAR,
		NameEN:           p.NameEN,
		Price:            p.Price,
		DiscountedPrice:  p.DiscountedPrice(),
		StockQuantity:    p.StockQuantity,
		InStock:          p.InStock(),
		ImageURLs:        p.ImageURLs,
		IsBestSeller:     p.IsBestSeller,
		LimitedTimeOffer: p.LimitedTimeOffer,
	}
}

func mapCart(sessionID string, s *cart.Store) CartResponse {
	items := s.Items()
	return CartResponse{
		SessionID:  sessionID,
		Items:      items,
		TotalPrice: s.TotalPrice(),
		Count:      len(items),
	}
}

func mapCheckout(res *checkout.Result, projector *order.Projector, locale i18n.Locale) CheckoutResponse {
	return CheckoutResponse{
		Order:       mapOrder(res.Order, projector, locale),
		WhatsAppURL: res.WhatsAppURL,
		Warning:     res.Warning,
		Replayed:    res.Replayed,
	}
}

func mapOrder(o *order.Order, projector *order.Projector, locale i18n.Locale) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		}
		if it.Product != nil {
			items[i].Title = it.Product.Title(locale)
			items[i].Images = it.Product.Images
		}
	}

	payments := make([]PaymentResponse, len(o.Payments))
	for i, p := range o.Payments {
		payments[i] = PaymentResponse{
			Method:        p.Method,
			Amount:        p.Amount,
			Status:        p.Status,
			TransactionID: p.TransactionID,
		}
	}

	return OrderResponse{
		ID:         o.ID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		Customer:   o.Customer,
		Notes:      o.Notes,
		Items:      items,
		Payments:   payments,
		Tracking:   projector.Project(o, locale),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.Format(time.RFC3339),
	}
}

func mapOrders(orders []order.Order, projector *order.Projector, locale i18n.Locale) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrder(&orders[i], projector, locale)
	}
	return out
}
