package dashboard

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// Repository computes the dashboard aggregates in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// rangeClause appends date bounds to args and returns the WHERE fragment,
// empty when the range is unbounded.
func rangeClause(r Range, args *[]any) string {
	clause := ""
	if r.From != nil {
		*args = append(*args, *r.From)
		clause += " AND date >= $" + strconv.Itoa(len(*args))
	}
	if r.To != nil {
		*args = append(*args, *r.To)
		clause += " AND date <= $" + strconv.Itoa(len(*args))
	}
	return clause
}

func (r *Repository) sumByDay(ctx context.Context, table string, rng Range) ([]DayTotal, error) {
	var args []any
	query := `
		SELECT date_trunc('day', date) AS day, COALESCE(SUM(total_amount), 0)
		FROM ` + table + `
		WHERE TRUE` + rangeClause(rng, &args) + `
		GROUP BY day
		ORDER BY day`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Date, &d.Total); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) SalesByDay(ctx context.Context, rng Range) ([]DayTotal, error) {
	return r.sumByDay(ctx, "sales", rng)
}

func (r *Repository) PurchasesByDay(ctx context.Context, rng Range) ([]DayTotal, error) {
	return r.sumByDay(ctx, "purchases", rng)
}

func (r *Repository) LoansByDay(ctx context.Context, rng Range) ([]LoanDayTotal, error) {
	var args []any
	query := `
		SELECT date_trunc('day', date) AS day,
			COALESCE(SUM(total_loaned_returned), 0),
			COALESCE(SUM(total_loaned_unreturned), 0),
			COALESCE(SUM(total_sold), 0)
		FROM loans
		WHERE TRUE` + rangeClause(rng, &args) + `
		GROUP BY day
		ORDER BY day`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LoanDayTotal
	for rows.Next() {
		var l LoanDayTotal
		if err := rows.Scan(&l.Date, &l.Returned, &l.Unreturned, &l.Sold); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) PaymentsByDay(ctx context.Context, rng Range, origin string, paymentType trade.PaymentType) ([]DayTotal, error) {
	args := []any{origin}
	query := `
		SELECT date_trunc('day', date) AS day, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE origin = $1`
	if paymentType != "" {
		args = append(args, paymentType)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	query += rangeClause(rng, &args) + `
		GROUP BY day
		ORDER BY day`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Date, &d.Total); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
