package trade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// DetailRepositoryPort abstracts line item storage. Implementations must
// apply the stock side effects atomically with the row change.
type DetailRepositoryPort interface {
	ListByParent(ctx context.Context, parent ParentRef) ([]Detail, error)
	PreviousIDs(ctx context.Context, parent ParentRef) ([]string, error)
	Create(ctx context.Context, d Detail) error
	Update(ctx context.Context, id string, upd DetailUpdate) error
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status DetailStatus) error
}

// PaymentRepositoryPort abstracts payment storage.
type PaymentRepositoryPort interface {
	ListByParent(ctx context.Context, parent ParentRef) ([]Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]Payment, error)
	PreviousIDs(ctx context.Context, parent ParentRef) ([]string, error)
	Create(ctx context.Context, p Payment) error
	Update(ctx context.Context, id string, upd PaymentUpdate) error
	Delete(ctx context.Context, id string) error
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	From   *time.Time
	To     *time.Time
	Type   PaymentType
	Origin string
}

// Service coordinates detail and payment reconciliation for the document
// services and serves the standalone detail and transaction endpoints.
type Service struct {
	logger   *slog.Logger
	details  DetailRepositoryPort
	payments PaymentRepositoryPort
	now      func() time.Time
}

// NewService wires a trade service.
func NewService(logger *slog.Logger, details DetailRepositoryPort, payments PaymentRepositoryPort) *Service {
	return &Service{logger: logger, details: details, payments: payments, now: time.Now}
}

// DetailInput is one incoming line on a document save. An empty or unknown
// ID means the line is new.
type DetailInput struct {
	ID          string       `json:"saleDetailId"`
	ProductID   string       `json:"productId" validate:"required"`
	Quantity    float64      `json:"quantity" validate:"gt=0"`
	UnitPrice   float64      `json:"unitPrice" validate:"gte=0"`
	NameProduct string       `json:"nameProduct" validate:"required"`
	CodeProduct string       `json:"codeProduct"`
	TypeTax     string       `json:"typeTax"`
	ValueTax    float64      `json:"valueTax" validate:"gte=0"`
	Status      DetailStatus `json:"status"`
}

// PaymentInput is one incoming payment on a document save.
type PaymentInput struct {
	ID            string        `json:"transactionId"`
	UserID        string        `json:"userId" validate:"required"`
	Date          time.Time     `json:"date" validate:"required"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required"`
	Amount        float64       `json:"amount" validate:"gt=0"`
}

// ReconcileDetails applies the incoming lines against what the document
// currently holds. docNumber only feeds log context.
func (s *Service) ReconcileDetails(ctx context.Context, parent ParentRef, docNumber int, incoming []DetailInput) Outcome {
	prev, err := s.details.PreviousIDs(ctx, parent)
	if err != nil {
		s.logger.Error("loading previous details failed", "parent", parent.ID(), "error", err)
		return Outcome{Warnings: []string{fmt.Sprintf("load details: %v", err)}}
	}

	kind := parent.Kind()
	ops := ReconcileOps[DetailInput]{
		Label: "detail",
		ID:    func(in DetailInput) string { return in.ID },
		Create: func(ctx context.Context, in DetailInput) error {
			d := Detail{
				ID:          in.ID,
				ProductID:   in.ProductID,
				Quantity:    in.Quantity,
				UnitPrice:   in.UnitPrice,
				NameProduct: in.NameProduct,
				CodeProduct: in.CodeProduct,
				TypeTax:     in.TypeTax,
				ValueTax:    in.ValueTax,
				Status:      defaultStatus(kind, in.Status),
				CreatedAt:   s.now().UTC(),
			}
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			switch kind {
			case KindSale:
				d.SaleID = parent.SaleID
			case KindPurchase:
				d.PurchaseID = parent.PurchaseID
			case KindLoan:
				d.LoanID = parent.LoanID
			}
			return s.details.Create(ctx, d)
		},
		Update: func(ctx context.Context, in DetailInput) error {
			return s.details.Update(ctx, in.ID, DetailUpdate{
				Quantity:    in.Quantity,
				UnitPrice:   in.UnitPrice,
				NameProduct: in.NameProduct,
				TypeTax:     in.TypeTax,
				ValueTax:    in.ValueTax,
				Status:      defaultStatus(kind, in.Status),
			})
		},
		Delete: s.details.Delete,
	}
	out := Reconcile(ctx, s.logger, prev, incoming, ops)
	s.logger.Info("details reconciled",
		"kind", kind, "number", docNumber,
		"created", out.Created, "updated", out.Updated, "deleted", out.Deleted,
		"warnings", len(out.Warnings))
	return out
}

func defaultStatus(kind Kind, st DetailStatus) DetailStatus {
	if st != "" {
		return st
	}
	if kind == KindLoan {
		return StatusToReturn
	}
	return StatusSold
}

// ReconcilePayments applies the incoming payments against what the document
// currently holds. Created payments get a synthesised description and the
// origin of the owning document kind; updates only touch date, method and
// amount.
func (s *Service) ReconcilePayments(ctx context.Context, parent ParentRef, docNumber int, incoming []PaymentInput) Outcome {
	prev, err := s.payments.PreviousIDs(ctx, parent)
	if err != nil {
		s.logger.Error("loading previous payments failed", "parent", parent.ID(), "error", err)
		return Outcome{Warnings: []string{fmt.Sprintf("load payments: %v", err)}}
	}

	kind := parent.Kind()
	ops := ReconcileOps[PaymentInput]{
		Label: "payment",
		ID:    func(in PaymentInput) string { return in.ID },
		Create: func(ctx context.Context, in PaymentInput) error {
			p := Payment{
				ID:            in.ID,
				UserID:        in.UserID,
				Date:          MergeDateWithClock(in.Date, s.now()),
				PaymentMethod: in.PaymentMethod,
				Type:          TypeDeposit,
				Amount:        in.Amount,
				Description:   kind.PaymentDescription(docNumber),
				Origin:        kind.PaymentOrigin(),
			}
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			switch kind {
			case KindSale:
				p.SaleID = parent.SaleID
			case KindPurchase:
				p.PurchaseID = parent.PurchaseID
			case KindLoan:
				p.LoanID = parent.LoanID
			}
			return s.payments.Create(ctx, p)
		},
		Update: func(ctx context.Context, in PaymentInput) error {
			return s.payments.Update(ctx, in.ID, PaymentUpdate{
				Date:          MergeDateWithClock(in.Date, s.now()),
				PaymentMethod: in.PaymentMethod,
				Amount:        in.Amount,
			})
		},
		Delete: s.payments.Delete,
	}
	out := Reconcile(ctx, s.logger, prev, incoming, ops)
	s.logger.Info("payments reconciled",
		"kind", kind, "number", docNumber,
		"created", out.Created, "updated", out.Updated, "deleted", out.Deleted,
		"warnings", len(out.Warnings))
	return out
}

// ListDetails returns a document's line items.
func (s *Service) ListDetails(ctx context.Context, parent ParentRef) ([]Detail, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	return s.details.ListByParent(ctx, parent)
}

// MarkDetailStatus moves a loaned line to returned or sold. Returning a line
// puts its quantity back in stock.
func (s *Service) MarkDetailStatus(ctx context.Context, id string, status DetailStatus) error {
	switch status {
	case StatusReturned, StatusSold, StatusToReturn:
	default:
		return fmt.Errorf("trade: invalid detail status %q: %w", status, httpx.ErrValidation)
	}
	return s.details.UpdateStatus(ctx, id, status)
}

// ListPayments returns payments matching the filter.
func (s *Service) ListPayments(ctx context.Context, f PaymentFilter) ([]Payment, error) {
	return s.payments.List(ctx, f)
}

// ListPaymentsByParent returns a document's payments.
func (s *Service) ListPaymentsByParent(ctx context.Context, parent ParentRef) ([]Payment, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	return s.payments.ListByParent(ctx, parent)
}

// ManualPaymentInput registers a transaction outside any document.
type ManualPaymentInput struct {
	UserID        string        `json:"userId" validate:"required"`
	Date          time.Time     `json:"date" validate:"required"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required"`
	Type          PaymentType   `json:"type" validate:"required,oneof=Depósito Retiro"`
	Amount        float64       `json:"amount" validate:"gt=0"`
	Description   string        `json:"description"`
}

// CreateManualPayment records a standalone movement with origin Transacción.
func (s *Service) CreateManualPayment(ctx context.Context, in ManualPaymentInput) (Payment, error) {
	p := Payment{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Date:          MergeDateWithClock(in.Date, s.now()),
		PaymentMethod: in.PaymentMethod,
		Type:          in.Type,
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
		Origin:        "Transacción",
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// UpdatePayment edits a payment's date, method and amount.
func (s *Service) UpdatePayment(ctx context.Context, id string, upd PaymentUpdate) error {
	upd.Date = MergeDateWithClock(upd.Date, s.now())
	return s.payments.Update(ctx, id, upd)
}

// DeletePayment removes a payment.
func (s *Service) DeletePayment(ctx context.Context, id string) error {
	return s.payments.Delete(ctx, id)
}
