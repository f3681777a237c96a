package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts user persistence.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}

// ReceiptMailer enqueues a receipt email carrying the voucher PDF.
type ReceiptMailer interface {
	EnqueueReceiptEmail(ctx context.Context, email, pdfURL string) error
}

// Service holds user business rules.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	mailer ReceiptMailer
	now    func() time.Time
}

// NewService wires a users service. mailer may be nil when no mail transport
// is configured; SendReceipt then fails fast.
func NewService(logger *slog.Logger, repo RepositoryPort, mailer ReceiptMailer) *Service {
	return &Service{logger: logger, repo: repo, mailer: mailer, now: time.Now}
}

// UserInput carries the writable user fields.
type UserInput struct {
	Names    string `json:"names" validate:"required"`
	Surnames string `json:"surnames"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Type     string `json:"type"`
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a user.
func (s *Service) Create(ctx context.Context, in UserInput) (User, error) {
	u := User{
		ID:        uuid.NewString(),
		Names:     strings.TrimSpace(in.Names),
		Surnames:  strings.TrimSpace(in.Surnames),
		Email:     strings.TrimSpace(in.Email),
		Username:  strings.TrimSpace(in.Username),
		Type:      strings.TrimSpace(in.Type),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	s.logger.Info("user created", "id", u.ID, "username", u.Username)
	return u, nil
}

// Update rewrites a user's fields.
func (s *Service) Update(ctx context.Context, id string, in UserInput) (User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	current.Names = strings.TrimSpace(in.Names)
	current.Surnames = strings.TrimSpace(in.Surnames)
	current.Email = strings.TrimSpace(in.Email)
	current.Username = strings.TrimSpace(in.Username)
	current.Type = strings.TrimSpace(in.Type)
	if err := s.repo.Update(ctx, current); err != nil {
		return User{}, err
	}
	return current, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ReceiptInput identifies an accepted voucher on the e-invoicing provider.
type ReceiptInput struct {
	Email         string `json:"email" validate:"required,email"`
	IDSunat       string `json:"idSunat" validate:"required"`
	Format        string `json:"format" validate:"required"`
	FileNameSunat string `json:"fileNameSunat" validate:"required"`
}

// SendReceipt queues a receipt email pointing at the provider's hosted PDF.
func (s *Service) SendReceipt(ctx context.Context, baseURL string, in ReceiptInput) error {
	if s.mailer == nil {
		return fmt.Errorf("users: mail transport not configured")
	}
	pdfURL := fmt.Sprintf("%s/documents/%s/getPDF/%s/%s.pdf",
		strings.TrimRight(baseURL, "/"), in.IDSunat, in.Format, in.FileNameSunat)
	if err := s.mailer.EnqueueReceiptEmail(ctx, in.Email, pdfURL); err != nil {
		return err
	}
	s.logger.Info("receipt email queued", "email", in.Email, "document", in.IDSunat)
	return nil
}
