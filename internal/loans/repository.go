package loans

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists loans in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const loanColumns = `id, number, client_id, user_id, date, state, total_loaned_returned,
	total_loaned_unreturned, total_sold, total_amount, created_at`

func (r *Repository) List(ctx context.Context) ([]Loan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Loan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Loan{}, ErrLoanNotFound
		}
		return Loan{}, err
	}
	return l, nil
}

func (r *Repository) Create(ctx context.Context, l Loan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO loans (id, number, client_id, user_id, date, state, total_loaned_returned,
			total_loaned_unreturned, total_sold, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.Number, l.ClientID, l.UserID, l.Date, string(l.State), l.TotalLoanedReturned,
		l.TotalLoanedUnreturned, l.TotalSold, l.TotalAmount, l.CreatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, l Loan) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE loans
		SET client_id = $2, date = $3, state = $4, total_loaned_returned = $5,
			total_loaned_unreturned = $6, total_sold = $7, total_amount = $8
		WHERE id = $1`,
		l.ID, l.ClientID, l.Date, string(l.State), l.TotalLoanedReturned,
		l.TotalLoanedUnreturned, l.TotalSold, l.TotalAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLoanNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLoanNotFound
	}
	return nil
}

func scanLoan(row pgx.Row) (Loan, error) {
	var (
		l     Loan
		state string
	)
	err := row.Scan(&l.ID, &l.Number, &l.ClientID, &l.UserID, &l.Date, &state,
		&l.TotalLoanedReturned, &l.TotalLoanedUnreturned, &l.TotalSold, &l.TotalAmount,
		&l.CreatedAt)
	if err != nil {
		return Loan{}, err
	}
	l.State = State(state)
	return l, nil
}
