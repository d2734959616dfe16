package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/labeeb-storefront/internal/cart"
	"github.com/jcmexdev/labeeb-storefront/internal/order"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// Details is the order summary sent to the shop owner.
type Details struct {
	OrderID       string
	FirstName     string
	LastName      string
	Phone         string
	Items         []Item
	Total         decimal.Decimal
	StreetAddress string
	City          string
	State         string
	Postcode      string
	Notes         string
}

type Item struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// DetailsFromOrder prefers the persisted order items and falls back to the
// cart lines the order was placed from. Product names come from the joined
// product, then the cart line title, then a generic label.
func DetailsFromOrder(o *order.Order, lines []cart.LineItem, locale i18n.Locale) Details {
	titles := make(map[int64]string, len(lines))
	for _, l := range lines {
		titles[l.ProductID] = l.Title
	}

	var items []Item
	if len(o.Items) > 0 {
		for _, it := range o.Items {
			name := titles[it.ProductID]
			if it.Product != nil {
				if t := it.Product.Title(locale); t != "" {
					name = t
				}
			}
			if name == "" {
				name = fmt.Sprintf("Product %d", it.ProductID)
			}
			items = append(items, Item{ProductID: it.ProductID, ProductName: name, Quantity: it.Quantity, Price: it.Price})
		}
	} else {
		for _, l := range lines {
			items = append(items, Item{ProductID: l.ProductID, ProductName: l.Title, Quantity: l.Quantity, Price: l.DiscountedPrice})
		}
	}

	c := o.Customer
	return Details{
		OrderID:       o.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Phone:         c.Phone,
		Items:         items,
		Total:         o.TotalPrice,
		StreetAddress: c.StreetAddress,
		City:          c.City,
		State:         c.State,
		Postcode:      c.Postcode,
		Notes:         o.Notes,
	}
}

// FormatMessage renders the Arabic WhatsApp message for the shop owner.
func FormatMessage(d Details, now time.Time) string {
	var products strings.Builder
	for i, it := range d.Items {
		if i > 0 {
			products.WriteByte('\n')
		}
		fmt.Fprintf(&products, "• %d × %s - $%s", it.Quantity, it.ProductName, it.Price.StringFixed(2))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `🛒 *طلب جديد من متجر لابيب*

📋 *تفاصيل الطلب:*
رقم الطلب: %s
التاريخ: %s
الوقت: %s

👤 *معلومات العميل:*
الاسم: %s %s
الهاتف: %s
عدد المنتجات: %d منتج
المجموع: $%s

🛍️ *المنتجات المطلوبة:*
%s

📍 *عنوان التوصيل:*
%s
%s, %s %s`,
		d.OrderID, now.Format("2006/01/02"), now.Format("15:04:05"),
		d.FirstName, d.LastName, d.Phone, len(d.Items), d.Total.StringFixed(2),
		products.String(),
		d.StreetAddress, d.City, d.State, d.Postcode)

	if notes := strings.TrimSpace(d.Notes); notes != "" {
		fmt.Fprintf(&b, "\n\n📝 *ملاحظات العميل:*\n%s", notes)
	}

	b.WriteString(`

✅ *تم إنشاء الطلب بنجاح*
📞 *يرجى التواصل مع العميل لتأكيد الطلب*

---
🏪 *نظام طلبات متجر لابيب*`)

	return b.String()
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\t", "")

// FormatRecipient normalizes a WhatsApp number to international digits:
// a leading 0 becomes 20, numbers already starting with 20 are kept, a
// leading + is dropped and anything else gets the 20 prefix.
func FormatRecipient(phone string) string {
	n := phoneSeparators.Replace(phone)
	switch {
	case strings.HasPrefix(n, "0"):
		return "20" + n[1:]
	case strings.HasPrefix(n, "20"):
		return n
	case strings.HasPrefix(n, "+"):
		return strings.TrimPrefix(n, "+")
	default:
		return "20" + n
	}
}

// WhatsAppURL builds the wa.me deep link with the message pre-filled.
func WhatsAppURL(message, recipient string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + strings.TrimPrefix(recipient, "+") + "?text=" + text
}
