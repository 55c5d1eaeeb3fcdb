package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simbi/simbi-seller/internal/commerce"
	"github.com/simbi/simbi-seller/internal/platform/db"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository provides PostgreSQL backed product and order snapshots.
type Repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// EnsureSchema bootstraps the tables on the repository's pool.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return EnsureSchema(ctx, r.db)
}

// WithTx runs fn against a repository bound to a single transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, *Repository) error) error {
	if r.pool == nil {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{db: tx, pool: r.pool})
	})
}

// ListProducts returns every catalog entry ordered by id.
func (r *Repository) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, sku, price, stock, images, status, created_at, views
		FROM products
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list products: %w", err)
	}
	defer rows.Close()

	products := make([]commerce.Product, 0)
	for rows.Next() {
		var (
			p      commerce.Product
			images []byte
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &images, &status, &p.CreatedAt, &p.Views); err != nil {
			return nil, fmt.Errorf("store: scan product: %w", err)
		}
		if len(images) > 0 {
			if err := json.Unmarshal(images, &p.Images); err != nil {
				return nil, fmt.Errorf("store: decode images for %s: %w", p.ID, err)
			}
		}
		p.Status = commerce.ProductStatus(status)
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListOrders returns every order, newest created_at text first.
func (r *Repository) ListOrders(ctx context.Context) ([]commerce.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, items, total, status, created_at, fulfillment_hours
		FROM orders
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]commerce.Order, 0)
	for rows.Next() {
		var (
			o      commerce.Order
			items  []byte
			status string
		)
		if err := rows.Scan(&o.ID, &items, &o.Total, &status, &o.CreatedAt, &o.FulfillmentHours); err != nil {
			return nil, fmt.Errorf("store: scan order: %w", err)
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &o.Items); err != nil {
				return nil, fmt.Errorf("store: decode items for %s: %w", o.ID, err)
			}
		}
		o.Status = commerce.OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpsertProduct inserts or replaces a catalog entry.
func (r *Repository) UpsertProduct(ctx context.Context, p commerce.Product) error {
	images, err := json.Marshal(nonNilStrings(p.Images))
	if err != nil {
		return fmt.Errorf("store: encode images: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, name, sku, price, stock, images, status, created_at, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			sku = EXCLUDED.sku,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			images = EXCLUDED.images,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			views = EXCLUDED.views`,
		p.ID, p.Name, p.SKU, p.Price, p.Stock, images, string(p.Status), p.CreatedAt, p.Views)
	if err != nil {
		return fmt.Errorf("store: upsert product %s: %w", p.ID, err)
	}
	return nil
}

// UpsertOrder inserts or replaces an order with its line items.
func (r *Repository) UpsertOrder(ctx context.Context, o commerce.Order) error {
	items := o.Items
	if items == nil {
		items = []commerce.OrderItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("store: encode items: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (id, items, total, status, created_at, fulfillment_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			fulfillment_hours = EXCLUDED.fulfillment_hours`,
		o.ID, payload, o.Total, string(o.Status), o.CreatedAt, o.FulfillmentHours)
	if err != nil {
		return fmt.Errorf("store: upsert order %s: %w", o.ID, err)
	}
	return nil
}

// UpdateOrderStatus changes the status of an existing order.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, status commerce.OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("store: update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return commerce.ErrOrderNotFound
	}
	return nil
}

// Seed loads a snapshot into the tables in one transaction.
func (r *Repository) Seed(ctx context.Context, snap commerce.Snapshot) error {
	return r.WithTx(ctx, func(ctx context.Context, tx *Repository) error {
		for _, p := range snap.Products {
			if err := tx.UpsertProduct(ctx, p); err != nil {
				return err
			}
		}
		for _, o := range snap.Orders {
			if err := tx.UpsertOrder(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
