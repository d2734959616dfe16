// Package catalog exposes the products a customer can browse and add to a cart.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrOutOfStock      = errors.New("catalog: product out of stock")
)

// Product is a bilingual catalog entry. OfferPrice is zero when no offer is active.
type Product struct {
	ID               int64           `json:"id"`
	NameAR           string          `json:"name_ar"`
	NameEN           string          `json:"name_en"`
	DescriptionAR    string          `json:"description_ar"`
	DescriptionEN    string          `json:"description_en"`
	Price            decimal.Decimal `json:"price"`
	OfferPrice       decimal.Decimal `json:"offer_price"`
	StockQuantity    int             `json:"stock_quantity"`
	ImageURLs        []string        `json:"image_url"`
	IsBestSeller     bool            `json:"is_best_seller"`
	LimitedTimeOffer bool            `json:"limited_time_offer"`
	CategoryID       int64           `json:"category_id,omitempty"`
}

// Title returns the product name for locale.
func (p Product) Title(locale i18n.Locale) string {
	if locale == i18n.Arabic {
		return p.NameAR
	}
	return p.NameEN
}

// Description returns the product description for locale.
func (p Product) Description(locale i18n.Locale) string {
	if locale == i18n.Arabic {
		return p.DescriptionAR
	}
	return p.DescriptionEN
}

// DiscountedPrice is the offer price when one is set, otherwise the list price.
func (p Product) DiscountedPrice() decimal.Decimal {
	if p.OfferPrice.IsPositive() {
		return p.OfferPrice
	}
	return p.Price
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Filter narrows a product listing. Zero value lists everything.
type Filter struct {
	BestSeller   bool
	LimitedOffer bool
}

// Repository is the persistence port for products.
type Repository interface {
	ListProducts(ctx context.Context, f Filter) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	UpsertProduct(ctx context.Context, p *Product) error
}

// Service is the read side of the catalog plus seeding.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

// Get returns ErrProductNotFound when the id is unknown.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog: get product %d: %w", id, err)
	}
	return p, nil
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

// seedProduct keeps prices as strings so they are parsed exactly.
type seedProduct struct {
	ID               int64    `yaml:"id"`
	NameAR           string   `yaml:"name_ar"`
	NameEN           string   `yaml:"name_en"`
	DescriptionAR    string   `yaml:"description_ar"`
	DescriptionEN    string   `yaml:"description_en"`
	Price            string   `yaml:"price"`
	OfferPrice       string   `yaml:"offer_price"`
	StockQuantity    int      `yaml:"stock_quantity"`
	ImageURLs        []string `yaml:"image_url"`
	IsBestSeller     bool     `yaml:"is_best_seller"`
	LimitedTimeOffer bool     `yaml:"limited_time_offer"`
	CategoryID       int64    `yaml:"category_id"`
}

func (sp seedProduct) toProduct() (Product, error) {
	price, err := decimal.NewFromString(sp.Price)
	if err != nil {
		return Product{}, fmt.Errorf("price %q: %w", sp.Price, err)
	}
	offer := decimal.Zero
	if sp.OfferPrice != "" {
		if offer, err = decimal.NewFromString(sp.OfferPrice); err != nil {
			return Product{}, fmt.Errorf("offer price %q: %w", sp.OfferPrice, err)
		}
	}
	return Product{
		ID:               sp.ID,
		NameAR:           sp.NameAR,
		NameEN:           sp.NameEN,
		DescriptionAR:    sp.DescriptionAR,
		DescriptionEN:    sp.DescriptionEN,
		Price:            price,
		OfferPrice:       offer,
		StockQuantity:    sp.StockQuantity,
		ImageURLs:        sp.ImageURLs,
		IsBestSeller:     sp.IsBestSeller,
		LimitedTimeOffer: sp.LimitedTimeOffer,
		CategoryID:       sp.CategoryID,
	}, nil
}

// LoadSeed parses a YAML product file.
func LoadSeed(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing seed file: %w", err)
	}

	products := make([]Product, 0, len(f.Products))
	for _, sp := range f.Products {
		p, err := sp.toProduct()
		if err != nil {
			return nil, fmt.Errorf("catalog: product %d: %w", sp.ID, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// Seed upserts every product listed in a YAML file and returns how many were written.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	products, err := LoadSeed(path)
	if err != nil {
		return 0, err
	}

	for i := range products {
		if err := s.repo.UpsertProduct(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("catalog: seeding product %d: %w", products[i].ID, err)
		}
	}
	return len(products), nil
}
