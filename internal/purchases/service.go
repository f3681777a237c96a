package purchases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comercia-pos/comercia-pos/internal/shared"
	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// RepositoryPort abstracts purchase persistence.
type RepositoryPort interface {
	List(ctx context.Context) ([]Purchase, error)
	Get(ctx context.Context, id string) (Purchase, error)
	Create(ctx context.Context, p Purchase) error
	Update(ctx context.Context, p Purchase) error
	Delete(ctx context.Context, id string) error
}

// NumberAllocator hands out sequential document numbers per kind.
type NumberAllocator interface {
	Next(ctx context.Context, kind string) (int, error)
}

// AuditPort records who saved what.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort drops cached dashboard payloads after a write.
type MetricsPort interface {
	Invalidate(ctx context.Context)
}

// Service orchestrates purchase saves.
type Service struct {
	logger  *slog.Logger
	repo    RepositoryPort
	numbers NumberAllocator
	trade   *trade.Service
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

// NewService wires a purchases service. audit and metrics may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, numbers NumberAllocator, tradeSvc *trade.Service, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		numbers: numbers,
		trade:   tradeSvc,
		audit:   audit,
		metrics: metrics,
		now:     time.Now,
	}
}

// SaveInput is one full purchase save.
type SaveInput struct {
	PurchaseID string    `json:"purchaseId"`
	SupplierID string    `json:"supplierId"`
	UserID     string    `json:"userId" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	State      State     `json:"state" validate:"required"`
	// TotalAmount is accepted for compatibility but never persisted: the
	// stored total is recomputed from the lines, discount and shipping.
	TotalAmount          float64              `json:"totalAmount"`
	Discount             float64              `json:"discount"`
	IsPercentageDiscount bool                 `json:"isPercentageDiscount"`
	BillingNumber        string               `json:"billingNumber"`
	BillingType          string               `json:"billingType"`
	Shipping             float64              `json:"shipping"`
	Details              []trade.DetailInput  `json:"purchaseDetails"`
	Payments             []trade.PaymentInput `json:"transactions"`
}

// SaveResult reports a completed save with any swallowed per-item failures.
type SaveResult struct {
	Purchase Purchase `json:"purchase"`
	Warnings []string `json:"warnings,omitempty"`
}

// Save upserts the purchase and reconciles payments and line items. Created
// lines bring their quantity into stock.
func (s *Service) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	if in.SupplierID == "" {
		return SaveResult{}, ErrNoSupplier
	}
	if len(in.Details) == 0 {
		return SaveResult{}, ErrNoItems
	}
	if !in.State.Valid() {
		return SaveResult{}, ErrInvalidState
	}

	purchase, err := s.upsert(ctx, in)
	if err != nil {
		return SaveResult{}, err
	}
	result := SaveResult{Purchase: purchase}

	parent := trade.ParentRef{PurchaseID: purchase.ID}
	payOut := s.trade.ReconcilePayments(ctx, parent, purchase.Number, in.Payments)
	detOut := s.trade.ReconcileDetails(ctx, parent, purchase.Number, in.Details)
	result.Warnings = append(result.Warnings, payOut.Warnings...)
	result.Warnings = append(result.Warnings, detOut.Warnings...)

	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.UserID,
			Action:   "save",
			Entity:   "purchase",
			EntityID: purchase.ID,
			Meta:     map[string]any{"number": purchase.Number, "total": purchase.TotalAmount},
		})
	}
	return result, nil
}

func (s *Service) upsert(ctx context.Context, in SaveInput) (Purchase, error) {
	date := trade.MergeDateWithClock(in.Date, s.now())
	total := trade.TotalsForInputs(in.Details, in.Discount, in.IsPercentageDiscount, in.Shipping).FinalTotal

	if in.PurchaseID != "" {
		purchase, err := s.repo.Get(ctx, in.PurchaseID)
		if err != nil {
			return Purchase{}, err
		}
		purchase.SupplierID = in.SupplierID
		purchase.Date = date
		purchase.State = in.State
		purchase.TotalAmount = total
		purchase.Discount = in.Discount
		purchase.IsPercentageDiscount = in.IsPercentageDiscount
		purchase.BillingNumber = in.BillingNumber
		purchase.BillingType = in.BillingType
		purchase.Shipping = in.Shipping
		if err := s.repo.Update(ctx, purchase); err != nil {
			return Purchase{}, err
		}
		return purchase, nil
	}

	// Purchases draw from their own counter, not from any other document
	// kind's sequence.
	number, err := s.numbers.Next(ctx, "purchase")
	if err != nil {
		return Purchase{}, err
	}
	purchase := Purchase{
		ID:                   uuid.NewString(),
		Number:               number,
		SupplierID:           in.SupplierID,
		UserID:               in.UserID,
		Date:                 date,
		State:                in.State,
		TotalAmount:          total,
		Discount:             in.Discount,
		IsPercentageDiscount: in.IsPercentageDiscount,
		BillingNumber:        in.BillingNumber,
		BillingType:          in.BillingType,
		Shipping:             in.Shipping,
		CreatedAt:            s.now().UTC(),
	}
	if err := s.repo.Create(ctx, purchase); err != nil {
		return Purchase{}, err
	}
	s.logger.Info("purchase created", "id", purchase.ID, "number", purchase.Number)
	return purchase, nil
}

// List returns all purchases.
func (s *Service) List(ctx context.Context) ([]Purchase, error) {
	return s.repo.List(ctx)
}

// Get fetches one purchase.
func (s *Service) Get(ctx context.Context, id string) (Purchase, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a purchase. Its number is never reissued.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	return nil
}
