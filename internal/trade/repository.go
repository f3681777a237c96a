package trade

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DetailRepository persists line items in PostgreSQL. Every mutation runs in
// a repeatable-read transaction together with its product stock adjustment.
type DetailRepository struct {
	pool *pgxpool.Pool
}

// NewDetailRepository constructs DetailRepository.
func NewDetailRepository(pool *pgxpool.Pool) *DetailRepository {
	return &DetailRepository{pool: pool}
}

const detailColumns = `id, sale_id, purchase_id, loan_id, product_id, quantity, unit_price,
	name_product, code_product, type_tax, value_tax, status, created_at`

func parentWhere(parent ParentRef) (string, string) {
	switch parent.Kind() {
	case KindSale:
		return "sale_id", parent.SaleID
	case KindPurchase:
		return "purchase_id", parent.PurchaseID
	case KindLoan:
		return "loan_id", parent.LoanID
	case KindExpense:
		return "expense_id", parent.ExpenseID
	}
	return "", ""
}

func (r *DetailRepository) ListByParent(ctx context.Context, parent ParentRef) ([]Detail, error) {
	col, id := parentWhere(parent)
	if col == "" {
		return nil, ErrAmbiguousParent
	}
	query := `SELECT ` + detailColumns + ` FROM sales_details WHERE ` + col + ` = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *DetailRepository) PreviousIDs(ctx context.Context, parent ParentRef) ([]string, error) {
	col, id := parentWhere(parent)
	if col == "" {
		return nil, ErrAmbiguousParent
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM sales_details WHERE `+col+` = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}

// Create inserts the line and applies its stock effect: purchases bring
// quantity in, sales and loans take it out.
func (r *DetailRepository) Create(ctx context.Context, d Detail) error {
	if err := d.Parent().Validate(); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sales_details (id, sale_id, purchase_id, loan_id, product_id, quantity,
				unit_price, name_product, code_product, type_tax, value_tax, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			d.ID, nullStr(d.SaleID), nullStr(d.PurchaseID), nullStr(d.LoanID), d.ProductID,
			d.Quantity, d.UnitPrice, d.NameProduct, d.CodeProduct, d.TypeTax, d.ValueTax,
			string(d.Status), d.CreatedAt)
		if err != nil {
			return err
		}
		return adjustStock(ctx, tx, d.ProductID, d.Parent().Kind().StockEffect()*d.Quantity)
	})
}

// Update rewrites the editable fields and moves stock by the signed quantity
// delta, so growing a sale line takes more out and shrinking it puts the
// difference back.
func (r *DetailRepository) Update(ctx context.Context, id string, upd DetailUpdate) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		prev, err := lockDetail(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE sales_details
			SET quantity = $2, unit_price = $3, name_product = $4, type_tax = $5,
				value_tax = $6, status = $7
			WHERE id = $1`,
			id, upd.Quantity, upd.UnitPrice, upd.NameProduct, upd.TypeTax, upd.ValueTax,
			string(upd.Status))
		if err != nil {
			return err
		}
		delta := upd.Quantity - prev.Quantity
		return adjustStock(ctx, tx, prev.ProductID, prev.Parent().Kind().StockEffect()*delta)
	})
}

// Delete removes the line and reverses the stock effect of its creation.
func (r *DetailRepository) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		prev, err := lockDetail(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sales_details WHERE id = $1`, id); err != nil {
			return err
		}
		return adjustStock(ctx, tx, prev.ProductID, -prev.Parent().Kind().StockEffect()*prev.Quantity)
	})
}

// UpdateStatus moves a loaned line between lifecycle states. Only DEVUELTO
// counts as back in stock, so crossing that boundary adjusts the product.
func (r *DetailRepository) UpdateStatus(ctx context.Context, id string, status DetailStatus) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		prev, err := lockDetail(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE sales_details SET status = $2 WHERE id = $1`,
			id, string(status)); err != nil {
			return err
		}
		delta := (inStock(status) - inStock(prev.Status)) * prev.Quantity
		if delta == 0 {
			return nil
		}
		return adjustStock(ctx, tx, prev.ProductID, delta)
	})
}

func inStock(status DetailStatus) float64 {
	if status == StatusReturned {
		return 1
	}
	return 0
}

func (r *DetailRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func lockDetail(ctx context.Context, tx pgx.Tx, id string) (Detail, error) {
	row := tx.QueryRow(ctx, `SELECT `+detailColumns+` FROM sales_details WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDetail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, ErrDetailNotFound
		}
		return Detail{}, err
	}
	return d, nil
}

func adjustStock(ctx context.Context, tx pgx.Tx, productID string, delta float64) error {
	if delta == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now() WHERE id = $1`,
		productID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade: product %s not found for stock adjustment", productID)
	}
	return nil
}

func scanDetail(row pgx.Row) (Detail, error) {
	var (
		d                          Detail
		saleID, purchaseID, loanID *string
		status                     string
	)
	err := row.Scan(&d.ID, &saleID, &purchaseID, &loanID, &d.ProductID, &d.Quantity,
		&d.UnitPrice, &d.NameProduct, &d.CodeProduct, &d.TypeTax, &d.ValueTax,
		&status, &d.CreatedAt)
	if err != nil {
		return Detail{}, err
	}
	d.SaleID = deref(saleID)
	d.PurchaseID = deref(purchaseID)
	d.LoanID = deref(loanID)
	d.Status = DetailStatus(status)
	return d, nil
}

// PaymentRepository persists payments in PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository constructs PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, sale_id, purchase_id, loan_id, expense_id, user_id, date,
	payment_method, type, amount, description, origin`

func (r *PaymentRepository) ListByParent(ctx context.Context, parent ParentRef) ([]Payment, error) {
	col, id := parentWhere(parent)
	if col == "" {
		return nil, ErrAmbiguousParent
	}
	query := `SELECT ` + paymentColumns + ` FROM transactions WHERE ` + col + ` = $1 ORDER BY date`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	n := 0

	if f.From != nil {
		n++
		query += ` AND date >= $` + strconv.Itoa(n)
		args = append(args, *f.From)
	}
	if f.To != nil {
		n++
		query += ` AND date <= $` + strconv.Itoa(n)
		args = append(args, *f.To)
	}
	if f.Type != "" {
		n++
		query += ` AND type = $` + strconv.Itoa(n)
		args = append(args, string(f.Type))
	}
	if f.Origin != "" {
		n++
		query += ` AND origin = $` + strconv.Itoa(n)
		args = append(args, f.Origin)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *PaymentRepository) PreviousIDs(ctx context.Context, parent ParentRef) ([]string, error) {
	col, id := parentWhere(parent)
	if col == "" {
		return nil, ErrAmbiguousParent
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM transactions WHERE `+col+` = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}

func (r *PaymentRepository) Create(ctx context.Context, p Payment) error {
	// Manual transactions carry no parent; anything else must carry exactly one.
	if p.Parent().Kind() != "" {
		if err := p.Parent().Validate(); err != nil {
			return err
		}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, sale_id, purchase_id, loan_id, expense_id, user_id,
			date, payment_method, type, amount, description, origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, nullStr(p.SaleID), nullStr(p.PurchaseID), nullStr(p.LoanID), nullStr(p.ExpenseID),
		p.UserID, p.Date, string(p.PaymentMethod), string(p.Type), p.Amount, p.Description,
		p.Origin)
	return err
}

func (r *PaymentRepository) Update(ctx context.Context, id string, upd PaymentUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions SET date = $2, payment_method = $3, amount = $4 WHERE id = $1`,
		id, upd.Date, string(upd.PaymentMethod), upd.Amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func collectPayments(rows pgx.Rows) ([]Payment, error) {
	var payments []Payment
	for rows.Next() {
		var (
			p                                     Payment
			saleID, purchaseID, loanID, expenseID *string
			method, ptype                         string
		)
		err := rows.Scan(&p.ID, &saleID, &purchaseID, &loanID, &expenseID, &p.UserID,
			&p.Date, &method, &ptype, &p.Amount, &p.Description, &p.Origin)
		if err != nil {
			return nil, err
		}
		p.SaleID = deref(saleID)
		p.PurchaseID = deref(purchaseID)
		p.LoanID = deref(loanID)
		p.ExpenseID = deref(expenseID)
		p.PaymentMethod = PaymentMethod(method)
		p.Type = PaymentType(ptype)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
