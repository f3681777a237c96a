package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort persists billing records.
type RepositoryPort interface {
	List(ctx context.Context) ([]Billing, error)
	Get(ctx context.Context, id string) (Billing, error)
	FindBySale(ctx context.Context, saleID string) (Billing, error)
	LastNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, b Billing) error
	UpdateState(ctx context.Context, id, state string) (Billing, error)
}

// InvoiceSource loads the sale lines and customer needed to assemble a
// document.
type InvoiceSource interface {
	InvoiceData(ctx context.Context, saleID string) (InvoiceData, error)
}

// Service drives electronic receipt submission and lifecycle updates.
type Service struct {
	logger       *slog.Logger
	repo         RepositoryPort
	source       InvoiceSource
	sunat        SunatClient
	company      Company
	personaID    string
	personaToken string

	now func() time.Time
}

// NewService constructs Service.
func NewService(logger *slog.Logger, repo RepositoryPort, source InvoiceSource, sunat SunatClient, company Company, personaID, personaToken string) *Service {
	return &Service{
		logger:       logger,
		repo:         repo,
		source:       source,
		sunat:        sunat,
		company:      company,
		personaID:    personaID,
		personaToken: personaToken,
		now:          time.Now,
	}
}

// SubmitForSale assembles and submits the receipt for a sale, records the
// result and returns the resulting billing state. A sale is billed at most
// once; resubmitting returns the recorded state of the first attempt.
func (s *Service) SubmitForSale(ctx context.Context, saleID string, docType string) (string, error) {
	dt := DocType(docType)
	if !dt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocType, docType)
	}

	if existing, err := s.repo.FindBySale(ctx, saleID); err == nil {
		s.logger.Info("sale already billed, skipping submission",
			"saleId", saleID, "billingId", existing.ID, "state", existing.State)
		return existing.State, nil
	} else if !errors.Is(err, ErrBillingNotFound) {
		return "", err
	}

	data, err := s.source.InvoiceData(ctx, saleID)
	if err != nil {
		return "", err
	}
	if len(data.Lines) == 0 {
		return "", ErrNoLines
	}

	suggested, err := s.sunat.SuggestedNumber(ctx, dt)
	if err != nil {
		return "", err
	}

	payload := BuildPayload(s.company, s.personaID, s.personaToken, dt, suggested, data, s.now())
	res, err := s.sunat.SendBill(ctx, payload)
	if err != nil {
		return "", err
	}

	last, err := s.repo.LastNumber(ctx)
	if err != nil {
		return "", err
	}

	state := StatePendiente
	if res.Accepted {
		state = StateAceptado
	}
	now := s.now()
	b := Billing{
		ID:            uuid.NewString(),
		SaleID:        saleID,
		Type:          dt,
		State:         state,
		Number:        last + 1,
		IDSunat:       res.DocumentID,
		FileNameSunat: FileName(s.company.RUC, dt, suggested),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return "", err
	}
	s.logger.Info("receipt submitted",
		"saleId", saleID, "type", dt, "number", b.Number, "state", state, "idSunat", b.IDSunat)
	return state, nil
}

// List returns every billing record, newest first.
func (s *Service) List(ctx context.Context) ([]Billing, error) {
	return s.repo.List(ctx)
}

// Get returns one billing record by id.
func (s *Service) Get(ctx context.Context, id string) (Billing, error) {
	return s.repo.Get(ctx, id)
}

// LastNumber returns the highest internal correlative issued so far, zero
// when no document has been issued.
func (s *Service) LastNumber(ctx context.Context) (int, error) {
	return s.repo.LastNumber(ctx)
}

// UpdateState moves a billing record to a new lifecycle state.
func (s *Service) UpdateState(ctx context.Context, id, state string) (Billing, error) {
	if !ValidState(state) {
		return Billing{}, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	return s.repo.UpdateState(ctx, id, state)
}
