package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/labeeb-storefront/internal/order"
)

var (
	_ order.Repository = (*Store)(nil)
	_ order.Transactor = (*Store)(nil)
)

const orderColumns = `
	id, user_id, status, total_price,
	customer_first_name, customer_last_name, customer_phone, customer_email,
	customer_street_address, customer_city, customer_state, customer_postcode,
	order_notes, created_at, updated_at`

// WithinTx runs fn in a single transaction. Calls nested inside fn reuse the
// outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(order.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	if err := fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "sqlite: rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	return nil
}

func (s *Store) InsertOrder(ctx context.Context, o *order.Order) error {
	const q = `INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var userID any
	if o.UserID != nil {
		userID = *o.UserID
	}

	c := o.Customer
	_, err := s.q.ExecContext(ctx, q,
		o.ID, userID, string(o.Status), o.TotalPrice,
		c.FirstName, c.LastName, c.Phone, nullableString(c.Email),
		c.StreetAddress, c.City, c.State, c.Postcode,
		nullableString(o.Notes), formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %s: %w", o.ID, err)
	}
	return nil
}

func (s *Store) InsertItems(ctx context.Context, items []order.Item) error {
	const q = `INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES (?, ?, ?, ?, ?)`

	for _, it := range items {
		if _, err := s.q.ExecContext(ctx, q, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price); err != nil {
			return fmt.Errorf("sqlite: insert item for product %d: %w", it.ProductID, err)
		}
	}
	return nil
}

func (s *Store) InsertPayment(ctx context.Context, p *order.Payment) error {
	const q = `INSERT INTO payments
		(id, order_id, payment_method, amount, payment_status, transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.q.ExecContext(ctx, q,
		p.ID, p.OrderID, string(p.Method), p.Amount, string(p.Status),
		nullableString(p.TransactionID), formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert payment for %s: %w", p.OrderID, err)
	}
	return nil
}

// DeleteOrder removes the header; items and payments go with it by cascade.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete order %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %s: %w", id, err)
	}

	if err := s.loadChildren(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) FindOrdersByPhone(ctx context.Context, pq order.PhoneQuery) ([]order.Order, error) {
	var (
		where string
		arg   string
	)
	switch pq.Mode {
	case order.MatchExact:
		where, arg = `customer_phone = ?`, pq.Phone
	case order.MatchSubstring:
		where, arg = `customer_phone LIKE ? ESCAPE '\'`, "%"+escapeLike(pq.Phone)+"%"
	default:
		return nil, fmt.Errorf("sqlite: unknown phone match mode %d", pq.Mode)
	}

	orders, err := s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find orders by phone: %w", err)
	}

	for i := range orders {
		if err := s.loadChildren(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) FindOrderIDsLike(ctx context.Context, term string, limit int) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id FROM orders WHERE id LIKE ? ESCAPE '\' ORDER BY created_at DESC LIMIT ?`,
		"%"+escapeLike(term)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order ids like %q: %w", term, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id string, st order.Status, at time.Time) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(st), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("sqlite: update status of %s: %w", id, err)
	}
	return requireAffected(res)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, orderID string, st order.PaymentStatus, transactionID string) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE payments SET payment_status = ?, transaction_id = COALESCE(?, transaction_id) WHERE order_id = ?`,
		string(st), nullableString(transactionID), orderID)
	if err != nil {
		return fmt.Errorf("sqlite: update payment of %s: %w", orderID, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}

// queryOrders reads headers only. Rows are fully drained before returning
// because the single connection cannot serve a second query meanwhile.
func (s *Store) queryOrders(ctx context.Context, q string, args ...any) ([]order.Order, error) {
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) loadChildren(ctx context.Context, o *order.Order) error {
	items, err := s.loadItems(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("sqlite: load items of %s: %w", o.ID, err)
	}
	payments, err := s.loadPayments(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("sqlite: load payments of %s: %w", o.ID, err)
	}
	o.Items, o.Payments = items, payments
	return nil
}

func (s *Store) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	const q = `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.id, p.name_ar, p.name_en, p.price, p.image_url
		FROM   order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE  oi.order_id = ?
		ORDER  BY oi.rowid`

	rows, err := s.q.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []order.Item{}
	for rows.Next() {
		var (
			it        order.Item
			pID       sql.NullInt64
			nameAR    sql.NullString
			nameEN    sql.NullString
			pPrice    decimal.NullDecimal
			imagesRaw sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&pID, &nameAR, &nameEN, &pPrice, &imagesRaw); err != nil {
			return nil, err
		}
		if pID.Valid {
			it.Product = &order.ProductRef{
				ID:     pID.Int64,
				NameAR: nameAR.String,
				NameEN: nameEN.String,
				Price:  pPrice.Decimal,
				Images: decodeImages(imagesRaw.String),
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) loadPayments(ctx context.Context, orderID string) ([]order.Payment, error) {
	const q = `
		SELECT id, order_id, payment_method, amount, payment_status,
		       COALESCE(transaction_id, ''), created_at
		FROM   payments
		WHERE  order_id = ?
		ORDER  BY created_at, rowid`

	rows, err := s.q.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []order.Payment{}
	for rows.Next() {
		var (
			p         order.Payment
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.Status, &p.TransactionID, &createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (*order.Order, error) {
	var (
		o                    order.Order
		userID, email, notes sql.NullString
		createdAt, updatedAt string
	)
	c := &o.Customer
	err := r.Scan(
		&o.ID, &userID, &o.Status, &o.TotalPrice,
		&c.FirstName, &c.LastName, &c.Phone, &email,
		&c.StreetAddress, &c.City, &c.State, &c.Postcode,
		&notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		o.UserID = &userID.String
	}
	c.Email, o.Notes = email.String, notes.String

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func decodeImages(raw string) []string {
	if raw == "" {
		return nil
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil
	}
	return images
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
