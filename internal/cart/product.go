package cart

import (
	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// LineItemFromProduct snapshots a catalog product into a cart line: the title
// for locale, the offer price when one is active, and the current stock as the
// line's ceiling. Out-of-stock products are refused before they reach a cart.
func LineItemFromProduct(p catalog.Product, locale i18n.Locale, quantity int) (LineItem, error) {
	if !p.InStock() {
		return LineItem{}, catalog.ErrOutOfStock
	}

	images := append([]string(nil), p.ImageURLs...)
	return LineItem{
		ProductID:       p.ID,
		Title:           p.Title(locale),
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice(),
		Quantity:        quantity,
		Stock:           p.StockQuantity,
		Images: Images{
			Thumbnails: images,
			Previews:   images,
		},
	}, nil
}
