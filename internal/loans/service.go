package loans

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comercia-pos/comercia-pos/internal/shared"
	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// RepositoryPort abstracts loan persistence.
type RepositoryPort interface {
	List(ctx context.Context) ([]Loan, error)
	Get(ctx context.Context, id string) (Loan, error)
	Create(ctx context.Context, l Loan) error
	Update(ctx context.Context, l Loan) error
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

// Service orchestrates loan saves.
type Service struct {
	logger  *slog.Logger
	repo    RepositoryPort
	numbers NumberAllocator
	trade   *trade.Service
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

// NewService wires a loans service. audit and metrics may be nil.
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

// SaveInput is one full loan save. Line statuses decide which subset each
// line's amount lands in.
type SaveInput struct {
	LoanID   string               `json:"loanId"`
	ClientID string               `json:"clientId"`
	UserID   string               `json:"userId" validate:"required"`
	Date     time.Time            `json:"date" validate:"required"`
	Details  []trade.DetailInput  `json:"loanDetails"`
	Payments []trade.PaymentInput `json:"transactions"`
}

// SaveResult reports a completed save with any swallowed per-item failures.
type SaveResult struct {
	Loan     Loan     `json:"loan"`
	Warnings []string `json:"warnings,omitempty"`
}

// Totals splits the line amounts by status. Returned plus unreturned plus
// sold always equals the grand total.
type Totals struct {
	Returned   float64
	Unreturned float64
	Sold       float64
}

// Amount is the grand total.
func (t Totals) Amount() float64 {
	return t.Returned + t.Unreturned + t.Sold
}

// State derives the loan state: outstanding while any unreturned amount
// remains.
func (t Totals) State() State {
	if t.Unreturned != 0 {
		return StateOutstanding
	}
	return StateReturned
}

// ComputeTotals buckets each line's gross amount by its status. Lines
// without a status count as still out, matching how new loan lines default.
func ComputeTotals(details []trade.DetailInput) Totals {
	var t Totals
	for _, d := range details {
		amount := d.UnitPrice * d.Quantity
		switch d.Status {
		case trade.StatusReturned:
			t.Returned += amount
		case trade.StatusSold:
			t.Sold += amount
		default:
			t.Unreturned += amount
		}
	}
	return t
}

// Save upserts the loan with totals derived from the line statuses, then
// reconciles payments and line items.
func (s *Service) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	if in.ClientID == "" {
		return SaveResult{}, ErrNoClient
	}
	if len(in.Details) == 0 {
		return SaveResult{}, ErrNoItems
	}

	loan, err := s.upsert(ctx, in, ComputeTotals(in.Details))
	if err != nil {
		return SaveResult{}, err
	}
	result := SaveResult{Loan: loan}

	parent := trade.ParentRef{LoanID: loan.ID}
	payOut := s.trade.ReconcilePayments(ctx, parent, loan.Number, in.Payments)
	detOut := s.trade.ReconcileDetails(ctx, parent, loan.Number, in.Details)
	result.Warnings = append(result.Warnings, payOut.Warnings...)
	result.Warnings = append(result.Warnings, detOut.Warnings...)

	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.UserID,
			Action:   "save",
			Entity:   "loan",
			EntityID: loan.ID,
			Meta:     map[string]any{"number": loan.Number, "total": loan.TotalAmount},
		})
	}
	return result, nil
}

func (s *Service) upsert(ctx context.Context, in SaveInput, totals Totals) (Loan, error) {
	date := trade.MergeDateWithClock(in.Date, s.now())

	if in.LoanID != "" {
		loan, err := s.repo.Get(ctx, in.LoanID)
		if err != nil {
			return Loan{}, err
		}
		loan.ClientID = in.ClientID
		loan.Date = date
		loan.State = totals.State()
		loan.TotalLoanedReturned = totals.Returned
		loan.TotalLoanedUnreturned = totals.Unreturned
		loan.TotalSold = totals.Sold
		loan.TotalAmount = totals.Amount()
		if err := s.repo.Update(ctx, loan); err != nil {
			return Loan{}, err
		}
		return loan, nil
	}

	number, err := s.numbers.Next(ctx, "loan")
	if err != nil {
		return Loan{}, err
	}
	loan := Loan{
		ID:                    uuid.NewString(),
		Number:                number,
		ClientID:              in.ClientID,
		UserID:                in.UserID,
		Date:                  date,
		State:                 totals.State(),
		TotalLoanedReturned:   totals.Returned,
		TotalLoanedUnreturned: totals.Unreturned,
		TotalSold:             totals.Sold,
		TotalAmount:           totals.Amount(),
		CreatedAt:             s.now().UTC(),
	}
	if err := s.repo.Create(ctx, loan); err != nil {
		return Loan{}, err
	}
	s.logger.Info("loan created", "id", loan.ID, "number", loan.Number)
	return loan, nil
}

// List returns all loans.
func (s *Service) List(ctx context.Context) ([]Loan, error) {
	return s.repo.List(ctx)
}

// Get fetches one loan.
func (s *Service) Get(ctx context.Context, id string) (Loan, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a loan. Its number is never reissued.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	return nil
}
