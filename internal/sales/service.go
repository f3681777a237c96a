package sales

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comercia-pos/comercia-pos/internal/shared"
	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// RepositoryPort abstracts sale persistence.
type RepositoryPort interface {
	List(ctx context.Context) ([]Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	Create(ctx context.Context, s Sale) error
	Update(ctx context.Context, s Sale) error
	Delete(ctx context.Context, id string) error
}

// NumberAllocator hands out sequential document numbers per kind.
type NumberAllocator interface {
	Next(ctx context.Context, kind string) (int, error)
}

// BillingPort submits a sale to the e-invoicing provider. The returned state
// is the billing record's state after the attempt.
type BillingPort interface {
	SubmitForSale(ctx context.Context, saleID string, docType string) (string, error)
}

// AuditPort records who saved what.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort drops cached dashboard payloads after a write.
type MetricsPort interface {
	Invalidate(ctx context.Context)
}

// Service orchestrates sale saves.
type Service struct {
	logger  *slog.Logger
	repo    RepositoryPort
	numbers NumberAllocator
	trade   *trade.Service
	billing BillingPort
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

// NewService wires a sales service. billing, audit and metrics may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, numbers NumberAllocator, tradeSvc *trade.Service, billing BillingPort, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		numbers: numbers,
		trade:   tradeSvc,
		billing: billing,
		audit:   audit,
		metrics: metrics,
		now:     time.Now,
	}
}

// SaveInput is one full sale save: the parent document plus the complete
// current set of lines and payments. ReceiptType Ninguno skips billing.
type SaveInput struct {
	SaleID   string    `json:"saleId"`
	ClientID string    `json:"clientId"`
	UserID   string    `json:"userId" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	State    State     `json:"state" validate:"required"`
	// TotalAmount is what the store front displayed. It is accepted for
	// compatibility but never persisted: the stored total is recomputed
	// from the lines.
	TotalAmount          float64              `json:"totalAmount"`
	Discount             float64              `json:"discount"`
	IsPercentageDiscount bool                 `json:"isPercentageDiscount"`
	ReceiptType          string               `json:"receiptType"`
	Details              []trade.DetailInput  `json:"saleDetails"`
	Payments             []trade.PaymentInput `json:"transactions"`
}

// SaveResult reports a completed save. Warnings carry the per-item
// reconciliation failures that were swallowed; BillingState is PENDIENTE
// until the provider accepts, and billing failures never fail the save.
type SaveResult struct {
	Sale         Sale     `json:"sale"`
	BillingState string   `json:"billingState,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Save upserts the sale, submits billing when requested and reconciles
// payments and line items. Reconciliation failures degrade to warnings; only
// guard failures and the parent upsert itself can abort the save.
func (s *Service) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	if in.ClientID == "" {
		return SaveResult{}, ErrNoClient
	}
	if len(in.Details) == 0 {
		return SaveResult{}, ErrNoItems
	}
	if !in.State.Valid() {
		return SaveResult{}, ErrInvalidState
	}

	sale, err := s.upsert(ctx, in)
	if err != nil {
		return SaveResult{}, err
	}
	result := SaveResult{Sale: sale}

	// Billing runs on its own status channel; a rejected or failed
	// submission leaves the sale saved.
	if s.billing != nil && in.ReceiptType != "" && in.ReceiptType != "Ninguno" {
		state, err := s.billing.SubmitForSale(ctx, sale.ID, receiptDocType(in.ReceiptType))
		if err != nil {
			s.logger.Error("billing submission failed", "sale", sale.ID, "error", err)
			result.BillingState = "RECHAZADO"
		} else {
			result.BillingState = state
		}
	}

	parent := trade.ParentRef{SaleID: sale.ID}
	payOut := s.trade.ReconcilePayments(ctx, parent, sale.Number, in.Payments)
	detOut := s.trade.ReconcileDetails(ctx, parent, sale.Number, in.Details)
	result.Warnings = append(result.Warnings, payOut.Warnings...)
	result.Warnings = append(result.Warnings, detOut.Warnings...)

	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.UserID,
			Action:   "save",
			Entity:   "sale",
			EntityID: sale.ID,
			Meta:     map[string]any{"number": sale.Number, "total": sale.TotalAmount},
		})
	}
	return result, nil
}

func (s *Service) upsert(ctx context.Context, in SaveInput) (Sale, error) {
	date := trade.MergeDateWithClock(in.Date, s.now())
	total := trade.TotalsForInputs(in.Details, in.Discount, in.IsPercentageDiscount, 0).FinalTotal

	if in.SaleID != "" {
		sale, err := s.repo.Get(ctx, in.SaleID)
		if err != nil {
			return Sale{}, err
		}
		sale.ClientID = in.ClientID
		sale.Date = date
		sale.State = in.State
		sale.TotalAmount = total
		sale.Discount = in.Discount
		sale.IsPercentageDiscount = in.IsPercentageDiscount
		if err := s.repo.Update(ctx, sale); err != nil {
			return Sale{}, err
		}
		return sale, nil
	}

	number, err := s.numbers.Next(ctx, "sale")
	if err != nil {
		return Sale{}, err
	}
	sale := Sale{
		ID:                   uuid.NewString(),
		Number:               number,
		ClientID:             in.ClientID,
		UserID:               in.UserID,
		Date:                 date,
		State:                in.State,
		TotalAmount:          total,
		Discount:             in.Discount,
		IsPercentageDiscount: in.IsPercentageDiscount,
		CreatedAt:            s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return Sale{}, err
	}
	s.logger.Info("sale created", "id", sale.ID, "number", sale.Number)
	return sale, nil
}

func receiptDocType(receiptType string) string {
	if receiptType == "factura" || receiptType == "Factura" {
		return "Factura"
	}
	return "Boleta"
}

// List returns all sales.
func (s *Service) List(ctx context.Context) ([]Sale, error) {
	return s.repo.List(ctx)
}

// Get fetches one sale.
func (s *Service) Get(ctx context.Context, id string) (Sale, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a sale. Its number is never reissued.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	return nil
}
