package expense

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// RepositoryPort persists expense records.
type RepositoryPort interface {
	List(ctx context.Context) ([]Expense, error)
	Get(ctx context.Context, id string) (Expense, error)
	Create(ctx context.Context, e Expense) error
	Update(ctx context.Context, e Expense) error
	Delete(ctx context.Context, id string) error
}

// PaymentPort is the slice of the transactions store an expense needs.
type PaymentPort interface {
	ListByParent(ctx context.Context, parent trade.ParentRef) ([]trade.Payment, error)
	Create(ctx context.Context, p trade.Payment) error
	Update(ctx context.Context, id string, upd trade.PaymentUpdate) error
	Delete(ctx context.Context, id string) error
}

// MetricsPort drops cached dashboard payloads after a write.
type MetricsPort interface {
	Invalidate(ctx context.Context)
}

// Service keeps each expense and its withdrawal in lockstep.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	payments PaymentPort
	metrics  MetricsPort

	now func() time.Time
}

// NewService constructs Service. metrics may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, payments PaymentPort, metrics MetricsPort) *Service {
	return &Service{logger: logger, repo: repo, payments: payments, metrics: metrics, now: time.Now}
}

// SaveInput carries the expense form and its money movement in one request.
type SaveInput struct {
	ExpenseID     string              `json:"expenseId"`
	UserID        string              `json:"userId" validate:"required"`
	HasVoucher    bool                `json:"hasVoucher"`
	CompanyName   string              `json:"companyName"`
	RUC           string              `json:"RUC"`
	BillingNumber string              `json:"billingNumber"`
	BillingType   string              `json:"billingType"`
	Date          time.Time           `json:"date" validate:"required"`
	PaymentMethod trade.PaymentMethod `json:"paymentMethod" validate:"required"`
	Amount        float64             `json:"amount" validate:"gt=0"`
	Description   string              `json:"description"`
}

// Save creates or updates an expense together with its withdrawal. Voucher
// fields are dropped when the expense carries no voucher.
func (s *Service) Save(ctx context.Context, in SaveInput) (WithPayment, error) {
	if !in.HasVoucher {
		in.CompanyName, in.RUC, in.BillingNumber, in.BillingType = "", "", "", ""
	}
	var (
		wp  WithPayment
		err error
	)
	if in.ExpenseID == "" {
		wp, err = s.create(ctx, in)
	} else {
		wp, err = s.update(ctx, in)
	}
	if err != nil {
		return WithPayment{}, err
	}
	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	return wp, nil
}

func (s *Service) create(ctx context.Context, in SaveInput) (WithPayment, error) {
	now := s.now()
	e := Expense{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		HasVoucher:    in.HasVoucher,
		CompanyName:   in.CompanyName,
		RUC:           in.RUC,
		BillingNumber: in.BillingNumber,
		BillingType:   in.BillingType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return WithPayment{}, err
	}

	p := trade.Payment{
		ID:            uuid.NewString(),
		ExpenseID:     e.ID,
		UserID:        in.UserID,
		Date:          trade.MergeDateWithClock(in.Date, now),
		PaymentMethod: in.PaymentMethod,
		Type:          trade.TypeWithdrawal,
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
		Origin:        trade.KindExpense.PaymentOrigin(),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return WithPayment{}, err
	}
	s.logger.Info("expense recorded", "expenseId", e.ID, "amount", in.Amount, "hasVoucher", in.HasVoucher)
	return WithPayment{Expense: e, Transaction: p}, nil
}

func (s *Service) update(ctx context.Context, in SaveInput) (WithPayment, error) {
	e, err := s.repo.Get(ctx, in.ExpenseID)
	if err != nil {
		return WithPayment{}, err
	}
	e.HasVoucher = in.HasVoucher
	e.CompanyName = in.CompanyName
	e.RUC = in.RUC
	e.BillingNumber = in.BillingNumber
	e.BillingType = in.BillingType
	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return WithPayment{}, err
	}

	payments, err := s.payments.ListByParent(ctx, trade.ParentRef{ExpenseID: e.ID})
	if err != nil {
		return WithPayment{}, err
	}
	if len(payments) == 0 {
		return WithPayment{}, ErrMissingPayment
	}
	p := payments[0]
	upd := trade.PaymentUpdate{
		Date:          trade.MergeDateWithClock(in.Date, s.now()),
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
	}
	if err := s.payments.Update(ctx, p.ID, upd); err != nil {
		return WithPayment{}, err
	}
	p.Date = upd.Date
	p.PaymentMethod = upd.PaymentMethod
	p.Amount = upd.Amount
	return WithPayment{Expense: e, Transaction: p}, nil
}

// List returns every expense joined with its withdrawal.
func (s *Service) List(ctx context.Context) ([]WithPayment, error) {
	expenses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WithPayment, 0, len(expenses))
	for _, e := range expenses {
		wp, err := s.attachPayment(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, wp)
	}
	return out, nil
}

// Get returns one expense joined with its withdrawal.
func (s *Service) Get(ctx context.Context, id string) (WithPayment, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return WithPayment{}, err
	}
	return s.attachPayment(ctx, e)
}

func (s *Service) attachPayment(ctx context.Context, e Expense) (WithPayment, error) {
	payments, err := s.payments.ListByParent(ctx, trade.ParentRef{ExpenseID: e.ID})
	if err != nil {
		return WithPayment{}, err
	}
	wp := WithPayment{Expense: e}
	if len(payments) > 0 {
		wp.Transaction = payments[0]
	}
	return wp, nil
}

// Delete removes an expense and its withdrawal.
func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.payments.ListByParent(ctx, trade.ParentRef{ExpenseID: e.ID})
	if err != nil {
		return err
	}
	for _, p := range payments {
		if err := s.payments.Delete(ctx, p.ID); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.Invalidate(ctx)
	}
	return nil
}
