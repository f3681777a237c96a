package purchases

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists purchases in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const purchaseColumns = `id, number, supplier_id, user_id, date, state, total_amount,
	discount, is_percentage_discount, billing_number, billing_type, shipping, created_at`

func (r *Repository) List(ctx context.Context) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Purchase, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	p, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, ErrPurchaseNotFound
		}
		return Purchase{}, err
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p Purchase) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO purchases (id, number, supplier_id, user_id, date, state, total_amount,
			discount, is_percentage_discount, billing_number, billing_type, shipping, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Number, p.SupplierID, p.UserID, p.Date, string(p.State), p.TotalAmount,
		p.Discount, p.IsPercentageDiscount, p.BillingNumber, p.BillingType, p.Shipping,
		p.CreatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, p Purchase) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE purchases
		SET supplier_id = $2, date = $3, state = $4, total_amount = $5, discount = $6,
			is_percentage_discount = $7, billing_number = $8, billing_type = $9, shipping = $10
		WHERE id = $1`,
		p.ID, p.SupplierID, p.Date, string(p.State), p.TotalAmount, p.Discount,
		p.IsPercentageDiscount, p.BillingNumber, p.BillingType, p.Shipping)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

func scanPurchase(row pgx.Row) (Purchase, error) {
	var (
		p     Purchase
		state string
	)
	err := row.Scan(&p.ID, &p.Number, &p.SupplierID, &p.UserID, &p.Date, &state,
		&p.TotalAmount, &p.Discount, &p.IsPercentageDiscount, &p.BillingNumber,
		&p.BillingType, &p.Shipping, &p.CreatedAt)
	if err != nil {
		return Purchase{}, err
	}
	p.State = State(state)
	return p, nil
}
