package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
)

var _ catalog.Repository = (*Store)(nil)

const productColumns = `
	id, name_ar, name_en, description_ar, description_en, price, offer_price,
	stock_quantity, image_url, is_best_seller, limited_time_offer, category_id`

func (s *Store) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	var conds []string
	if f.BestSeller {
		conds = append(conds, "is_best_seller = 1")
	}
	if f.LimitedOffer {
		conds = append(conds, "limited_time_offer = 1")
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY id`

	rows, err := s.q.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get product %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) UpsertProduct(ctx context.Context, p *catalog.Product) error {
	const q = `INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name_ar            = excluded.name_ar,
			name_en            = excluded.name_en,
			description_ar     = excluded.description_ar,
			description_en     = excluded.description_en,
			price              = excluded.price,
			offer_price        = excluded.offer_price,
			stock_quantity     = excluded.stock_quantity,
			image_url          = excluded.image_url,
			is_best_seller     = excluded.is_best_seller,
			limited_time_offer = excluded.limited_time_offer,
			category_id        = excluded.category_id`

	images, err := json.Marshal(nonNil(p.ImageURLs))
	if err != nil {
		return fmt.Errorf("sqlite: encode images of product %d: %w", p.ID, err)
	}

	var category any
	if p.CategoryID != 0 {
		category = p.CategoryID
	}

	_, err = s.q.ExecContext(ctx, q,
		p.ID, p.NameAR, p.NameEN, p.DescriptionAR, p.DescriptionEN, p.Price, p.OfferPrice,
		p.StockQuantity, string(images), p.IsBestSeller, p.LimitedTimeOffer, category,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert product %d: %w", p.ID, err)
	}
	return nil
}

func scanProduct(r rowScanner) (*catalog.Product, error) {
	var (
		p        catalog.Product
		images   string
		category sql.NullInt64
	)
	err := r.Scan(
		&p.ID, &p.NameAR, &p.NameEN, &p.DescriptionAR, &p.DescriptionEN, &p.Price, &p.OfferPrice,
		&p.StockQuantity, &images, &p.IsBestSeller, &p.LimitedTimeOffer, &category,
	)
	if err != nil {
		return nil, err
	}
	p.ImageURLs = decodeImages(images)
	p.CategoryID = category.Int64
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
