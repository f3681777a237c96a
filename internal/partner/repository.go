package partner

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists clients and their documents in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientSelect = `
	SELECT c.id, c.name, c.type, c.phone, c.mail, c.address, c.created_at,
		d.id, d.type_document, d.number
	FROM clients c
	LEFT JOIN documents d ON d.client_id = c.id`

func (r *Repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, clientSelect+` ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClients(rows)
}

func (r *Repository) Search(ctx context.Context, query string) ([]Client, error) {
	rows, err := r.pool.Query(ctx, clientSelect+`
		WHERE c.name ILIKE $1 OR d.number ILIKE $1
		ORDER BY c.name`, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClients(rows)
}

func (r *Repository) Get(ctx context.Context, id string) (Client, error) {
	row := r.pool.QueryRow(ctx, clientSelect+` WHERE c.id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrClientNotFound
		}
		return Client{}, err
	}
	return c, nil
}

func (r *Repository) Create(ctx context.Context, c Client) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO clients (id, name, type, phone, mail, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, string(c.Type), c.Phone, c.Mail, c.Address, c.CreatedAt)
	if err != nil {
		return err
	}
	if c.Document != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO documents (id, client_id, type_document, number)
			VALUES ($1, $2, $3, $4)`,
			c.Document.ID, c.ID, string(c.Document.TypeDocument), c.Document.Number)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) Update(ctx context.Context, c Client) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET name = $2, type = $3, phone = $4, mail = $5, address = $6
		WHERE id = $1`,
		c.ID, c.Name, string(c.Type), c.Phone, c.Mail, c.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// SetDocument replaces the client's document. A nil doc deletes it, which is
// how removing the document section of the form propagates.
func (r *Repository) SetDocument(ctx context.Context, clientID string, doc *Document) error {
	if doc == nil {
		_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE client_id = $1`, clientID)
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, client_id, type_document, number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id) DO UPDATE SET type_document = $3, number = $4`,
		doc.ID, clientID, string(doc.TypeDocument), doc.Number)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

func collectClients(rows pgx.Rows) ([]Client, error) {
	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func scanClient(row pgx.Row) (Client, error) {
	var (
		c                      Client
		ctype                  string
		docID, docType, docNum *string
	)
	err := row.Scan(&c.ID, &c.Name, &ctype, &c.Phone, &c.Mail, &c.Address, &c.CreatedAt,
		&docID, &docType, &docNum)
	if err != nil {
		return Client{}, err
	}
	c.Type = ClientType(ctype)
	if docID != nil {
		c.Document = &Document{
			ID:           *docID,
			TypeDocument: DocumentType(derefStr(docType)),
			Number:       derefStr(docNum),
		}
	}
	return c, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
