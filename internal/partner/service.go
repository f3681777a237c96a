package partner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts client persistence. SetDocument with a nil
// document removes any existing one, keeping the one-to-one relation in
// step with the client payload.
type RepositoryPort interface {
	List(ctx context.Context) ([]Client, error)
	Search(ctx context.Context, query string) ([]Client, error)
	Get(ctx context.Context, id string) (Client, error)
	Create(ctx context.Context, c Client) error
	Update(ctx context.Context, c Client) error
	SetDocument(ctx context.Context, clientID string, doc *Document) error
	Delete(ctx context.Context, id string) error
}

// Service holds client business rules.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	now    func() time.Time
}

// NewService wires a partner service.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// ClientInput carries the writable client fields.
type ClientInput struct {
	Name     string     `json:"name" validate:"required"`
	Type     ClientType `json:"type" validate:"required"`
	Phone    string     `json:"phone"`
	Mail     string     `json:"mail" validate:"omitempty,email"`
	Address  string     `json:"address"`
	Document *Document  `json:"document"`
}

// List returns all clients with their documents.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

// Search matches client name or document number case-insensitively.
func (s *Service) Search(ctx context.Context, query string) ([]Client, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

// Get fetches one client.
func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a client, with its identity document when provided.
func (s *Service) Create(ctx context.Context, in ClientInput) (Client, error) {
	if !in.Type.Valid() {
		return Client{}, ErrInvalidClientType
	}
	c := Client{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Phone:     strings.TrimSpace(in.Phone),
		Mail:      strings.TrimSpace(in.Mail),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: s.now().UTC(),
	}
	if in.Document != nil {
		c.Document = &Document{
			ID:           uuid.NewString(),
			TypeDocument: in.Document.TypeDocument,
			Number:       strings.TrimSpace(in.Document.Number),
		}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}
	s.logger.Info("client created", "id", c.ID, "type", c.Type)
	return c, nil
}

// Update rewrites a client. A payload without a document drops any stored
// one; a payload with a document upserts it.
func (s *Service) Update(ctx context.Context, id string, in ClientInput) (Client, error) {
	if !in.Type.Valid() {
		return Client{}, ErrInvalidClientType
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Type = in.Type
	current.Phone = strings.TrimSpace(in.Phone)
	current.Mail = strings.TrimSpace(in.Mail)
	current.Address = strings.TrimSpace(in.Address)
	if err := s.repo.Update(ctx, current); err != nil {
		return Client{}, err
	}

	var doc *Document
	if in.Document != nil {
		doc = &Document{
			ID:           uuid.NewString(),
			TypeDocument: in.Document.TypeDocument,
			Number:       strings.TrimSpace(in.Document.Number),
		}
	}
	if err := s.repo.SetDocument(ctx, id, doc); err != nil {
		return Client{}, err
	}
	current.Document = doc
	return current, nil
}

// Delete removes a client and its document.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
