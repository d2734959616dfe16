// Package sqlite persists products, orders, order items, payments and the
// saga log with the pure-Go modernc.org/sqlite driver.
//
// Each database runs in WAL mode with a single open connection: SQLite takes
// one writer at a time and WAL keeps readers from blocking it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Register the pure-Go SQLite driver; no CGO toolchain needed.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id                  INTEGER PRIMARY KEY,
    name_ar             TEXT    NOT NULL DEFAULT '',
    name_en             TEXT    NOT NULL DEFAULT '',
    description_ar      TEXT    NOT NULL DEFAULT '',
    description_en      TEXT    NOT NULL DEFAULT '',
    price               TEXT    NOT NULL,
    offer_price         TEXT    NOT NULL DEFAULT '0',
    stock_quantity      INTEGER NOT NULL DEFAULT 0,
    -- JSON array of image URLs.
    image_url           TEXT    NOT NULL DEFAULT '[]',
    is_best_seller      INTEGER NOT NULL DEFAULT 0,
    limited_time_offer  INTEGER NOT NULL DEFAULT 0,
    category_id         INTEGER
);

CREATE TABLE IF NOT EXISTS orders (
    id                       TEXT PRIMARY KEY,
    -- Always NULL for guest checkout.
    user_id                  TEXT,
    status                   TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending','paid','shipped','delivered','cancelled')),
    -- Money is stored as exact decimal text.
    total_price              TEXT NOT NULL,
    customer_first_name      TEXT NOT NULL,
    customer_last_name       TEXT NOT NULL,
    customer_phone           TEXT NOT NULL,
    customer_email           TEXT,
    customer_street_address  TEXT NOT NULL,
    customer_city            TEXT NOT NULL,
    customer_state           TEXT NOT NULL,
    customer_postcode        TEXT NOT NULL,
    order_notes              TEXT,
    created_at               TEXT NOT NULL,
    updated_at               TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_phone ON orders(customer_phone);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items (
    id          TEXT    PRIMARY KEY,
    order_id    TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  INTEGER NOT NULL REFERENCES products(id),
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    price       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS payments (
    id              TEXT PRIMARY KEY,
    order_id        TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    payment_method  TEXT NOT NULL,
    amount          TEXT NOT NULL,
    payment_status  TEXT NOT NULL DEFAULT 'pending'
        CHECK (payment_status IN ('pending','completed','failed')),
    transaction_id  TEXT,
    created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id);
`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements order.Repository, order.Transactor and catalog.Repository.
type Store struct {
	db *sql.DB
	q  querier
	// inTx is set on the Store handed to a WithinTx callback.
	inTx bool
}

// Open opens (or creates) the storefront database at path and applies the schema.
//
//	store, err := sqlite.Open("./data/storefront.db")
func Open(path string) (*Store, error) {
	db, err := open(path, schema)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, q: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// open configures the driver through _pragma parameters: WAL for concurrent
// readers, enforced foreign keys (the cascades depend on it) and a busy
// timeout instead of immediate SQLITE_BUSY errors.
func open(path, ddl string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema to %q: %w", path, err)
	}
	return db, nil
}

// nullableString stores empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
