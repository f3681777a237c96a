package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `id, number, client_id, user_id, date, state, total_amount,
	discount, is_percentage_discount, created_at`

func (r *Repository) List(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrSaleNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

func (r *Repository) Create(ctx context.Context, s Sale) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sales (id, number, client_id, user_id, date, state, total_amount,
			discount, is_percentage_discount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.Number, s.ClientID, s.UserID, s.Date, string(s.State), s.TotalAmount,
		s.Discount, s.IsPercentageDiscount, s.CreatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, s Sale) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sales
		SET client_id = $2, date = $3, state = $4, total_amount = $5, discount = $6,
			is_percentage_discount = $7
		WHERE id = $1`,
		s.ID, s.ClientID, s.Date, string(s.State), s.TotalAmount, s.Discount,
		s.IsPercentageDiscount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func scanSale(row pgx.Row) (Sale, error) {
	var (
		s     Sale
		state string
	)
	err := row.Scan(&s.ID, &s.Number, &s.ClientID, &s.UserID, &s.Date, &state,
		&s.TotalAmount, &s.Discount, &s.IsPercentageDiscount, &s.CreatedAt)
	if err != nil {
		return Sale{}, err
	}
	s.State = State(state)
	return s, nil
}
