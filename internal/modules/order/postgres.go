package order

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// EnsureSchema creates the orders and order_products tables if they do not
// exist yet. The association table deliberately carries no uniqueness or
// foreign-key constraints: duplicate (order, product) rows are permitted and
// products may be deleted while still referenced.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id           UUID PRIMARY KEY,
			total_amount NUMERIC(10,2) NOT NULL,
			status       VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at   TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS order_products (
			order_id   UUID NOT NULL,
			product_id UUID NOT NULL
		)`)
	return err
}

// Create inserts the order and all its association rows inside a single
// transaction, so a failure leaves no partial rows behind.
func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, total_amount, status, created_at)
		VALUES ($1,$2,$3,$4)`,
		o.ID, o.TotalAmount, o.Status, o.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	for _, productID := range o.Products {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id)
			VALUES ($1,$2)`,
			o.ID, productID)
		if err != nil {
			return errors.Wrap(err, "insert order_products")
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o := &Order{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, total_amount, status, created_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Products, err = r.listProductIDs(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) List(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, total_amount, status, created_at
		FROM orders ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o := &Order{}
		if err := rows.Scan(&o.ID, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Products, err = r.listProductIDs(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) listProductIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id FROM order_products WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
