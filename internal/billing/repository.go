package billing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists billing records in PostgreSQL and loads invoice data
// from the sales tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const billingColumns = `id, sale_id, type, state, number, id_sunat, file_name_sunat,
	created_at, updated_at`

func scanBilling(row pgx.Row) (Billing, error) {
	var b Billing
	err := row.Scan(&b.ID, &b.SaleID, &b.Type, &b.State, &b.Number, &b.IDSunat,
		&b.FileNameSunat, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *Repository) List(ctx context.Context) ([]Billing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+billingColumns+` FROM billings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var billings []Billing
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, err
		}
		billings = append(billings, b)
	}
	return billings, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (Billing, error) {
	b, err := scanBilling(r.pool.QueryRow(ctx,
		`SELECT `+billingColumns+` FROM billings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Billing{}, ErrBillingNotFound
	}
	return b, err
}

func (r *Repository) FindBySale(ctx context.Context, saleID string) (Billing, error) {
	b, err := scanBilling(r.pool.QueryRow(ctx,
		`SELECT `+billingColumns+` FROM billings WHERE sale_id = $1 ORDER BY created_at LIMIT 1`, saleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Billing{}, ErrBillingNotFound
	}
	return b, err
}

func (r *Repository) LastNumber(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(number), 0) FROM billings`).Scan(&n)
	return n, err
}

func (r *Repository) Create(ctx context.Context, b Billing) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO billings (id, sale_id, type, state, number, id_sunat, file_name_sunat,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.SaleID, b.Type, b.State, b.Number, b.IDSunat, b.FileNameSunat,
		b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *Repository) UpdateState(ctx context.Context, id, state string) (Billing, error) {
	b, err := scanBilling(r.pool.QueryRow(ctx, `
		UPDATE billings SET state = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+billingColumns, id, state))
	if errors.Is(err, pgx.ErrNoRows) {
		return Billing{}, ErrBillingNotFound
	}
	return b, err
}

// InvoiceData loads the customer and the billed lines of a sale. Line names
// and prices come from the detail snapshot taken when the sale was saved.
func (r *Repository) InvoiceData(ctx context.Context, saleID string) (InvoiceData, error) {
	var data InvoiceData
	var docType, docNumber *string
	err := r.pool.QueryRow(ctx, `
		SELECT c.name, c.address, d.type_document, d.number
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		LEFT JOIN documents d ON d.client_id = c.id
		WHERE s.id = $1`, saleID).
		Scan(&data.Client.Name, &data.Client.Address, &docType, &docNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InvoiceData{}, ErrBillingNotFound
		}
		return InvoiceData{}, err
	}
	if docType != nil {
		data.Client.DocumentType = *docType
	}
	if docNumber != nil {
		data.Client.DocumentNumber = *docNumber
	}

	rows, err := r.pool.Query(ctx, `
		SELECT name_product, unit_price, quantity
		FROM sales_details
		WHERE sale_id = $1
		ORDER BY created_at`, saleID)
	if err != nil {
		return InvoiceData{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return InvoiceData{}, err
		}
		data.Lines = append(data.Lines, l)
	}
	return data, rows.Err()
}
