package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, code, price, stock_quantity, type_tax, value_tax,
	include_tax, created_at, updated_at`

func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *Repository) Search(ctx context.Context, query string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE $1 OR code ILIKE $1
		ORDER BY name`, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *Repository) Get(ctx context.Context, id string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, code, price, stock_quantity, type_tax, value_tax,
			include_tax, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Code, p.Price, p.StockQuantity, string(p.TypeTax), p.ValueTax,
		p.IncludeTax, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *Repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, code = $3, price = $4, stock_quantity = $5, type_tax = $6,
			value_tax = $7, include_tax = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, p.Name, p.Code, p.Price, p.StockQuantity, string(p.TypeTax), p.ValueTax,
		p.IncludeTax, p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SalesByProduct flattens the sale header with the matching line fields. One
// row per line keeps the query simple and the handler groups nothing.
func (r *Repository) SalesByProduct(ctx context.Context, productID string) ([]ProductSale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.number, s.date, COALESCE(u.username, ''), COALESCE(c.name, ''),
			d.quantity, d.unit_price
		FROM sales s
		JOIN sales_details d ON d.sale_id = s.id AND d.product_id = $1
		LEFT JOIN users u ON u.id = s.user_id
		LEFT JOIN clients c ON c.id = s.client_id
		ORDER BY s.date DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductSale
	for rows.Next() {
		var ps ProductSale
		if err := rows.Scan(&ps.SaleID, &ps.Number, &ps.Date, &ps.Username, &ps.ClientName,
			&ps.Quantity, &ps.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p       Product
		typeTax string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Price, &p.StockQuantity, &typeTax,
		&p.ValueTax, &p.IncludeTax, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	p.TypeTax = TaxType(typeTax)
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
