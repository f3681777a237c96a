package expense

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists expenses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const expenseColumns = `id, user_id, has_voucher, company_name, ruc, billing_number,
	billing_type, created_at, updated_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	var company, ruc, number, billType *string
	err := row.Scan(&e.ID, &e.UserID, &e.HasVoucher, &company, &ruc, &number, &billType,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Expense{}, err
	}
	if company != nil {
		e.CompanyName = *company
	}
	if ruc != nil {
		e.RUC = *ruc
	}
	if number != nil {
		e.BillingNumber = *number
	}
	if billType != nil {
		e.BillingType = *billType
	}
	return e, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) List(ctx context.Context) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var expenses []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, ErrExpenseNotFound
	}
	return e, err
}

func (r *Repository) Create(ctx context.Context, e Expense) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expenses (id, user_id, has_voucher, company_name, ruc, billing_number,
			billing_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.UserID, e.HasVoucher, nullStr(e.CompanyName), nullStr(e.RUC),
		nullStr(e.BillingNumber), nullStr(e.BillingType), e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, e Expense) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses
		SET has_voucher = $2, company_name = $3, ruc = $4, billing_number = $5,
			billing_type = $6, updated_at = $7
		WHERE id = $1`,
		e.ID, e.HasVoucher, nullStr(e.CompanyName), nullStr(e.RUC),
		nullStr(e.BillingNumber), nullStr(e.BillingType), e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
