// Package trade holds the line items, payments and reconciliation logic shared
// by sales, purchases and loans.
package trade

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// Kind identifies the document a detail or payment belongs to.
type Kind string

const (
	// KindSale marks documents that move stock out against a client.
	KindSale Kind = "sale"
	// KindPurchase marks documents that move stock in from a supplier.
	KindPurchase Kind = "purchase"
	// KindLoan marks pase documents: products lent and later returned or sold.
	KindLoan Kind = "loan"
	// KindExpense is only valid for payments.
	KindExpense Kind = "expense"
)

// DetailStatus tracks the lifecycle of a loaned line. Sales and purchases
// always carry StatusSold.
type DetailStatus string

const (
	StatusToReturn DetailStatus = "POR_DEVOLVER"
	StatusReturned DetailStatus = "DEVUELTO"
	StatusSold     DetailStatus = "VENDIDO"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "Efectivo"
	MethodYape     PaymentMethod = "Yape"
	MethodPlin     PaymentMethod = "Plin"
	MethodTransfer PaymentMethod = "Transferencia"
	MethodCard     PaymentMethod = "Tarjeta"
)

// PaymentType is the movement direction of a payment.
type PaymentType string

const (
	TypeDeposit    PaymentType = "Depósito"
	TypeWithdrawal PaymentType = "Retiro"
)

// ParentRef points a detail or payment at exactly one owning document.
type ParentRef struct {
	SaleID     string
	PurchaseID string
	LoanID     string
	ExpenseID  string
}

// ErrAmbiguousParent indicates zero or more than one parent reference.
var ErrAmbiguousParent = fmt.Errorf("trade: exactly one parent reference required: %w", httpx.ErrValidation)

// NewParentRef builds a reference for the given kind and id.
func NewParentRef(kind Kind, id string) (ParentRef, error) {
	if id == "" {
		return ParentRef{}, fmt.Errorf("trade: parent id required for %s", kind)
	}
	switch kind {
	case KindSale:
		return ParentRef{SaleID: id}, nil
	case KindPurchase:
		return ParentRef{PurchaseID: id}, nil
	case KindLoan:
		return ParentRef{LoanID: id}, nil
	case KindExpense:
		return ParentRef{ExpenseID: id}, nil
	}
	return ParentRef{}, fmt.Errorf("trade: unknown parent kind %q", kind)
}

// Validate checks the exactly-one invariant.
func (p ParentRef) Validate() error {
	count := 0
	for _, id := range []string{p.SaleID, p.PurchaseID, p.LoanID, p.ExpenseID} {
		if id != "" {
			count++
		}
	}
	if count != 1 {
		return ErrAmbiguousParent
	}
	return nil
}

// Kind reports which document the reference points at.
func (p ParentRef) Kind() Kind {
	switch {
	case p.SaleID != "":
		return KindSale
	case p.PurchaseID != "":
		return KindPurchase
	case p.LoanID != "":
		return KindLoan
	case p.ExpenseID != "":
		return KindExpense
	}
	return ""
}

// ID returns the id of whichever parent is set.
func (p ParentRef) ID() string {
	switch {
	case p.SaleID != "":
		return p.SaleID
	case p.PurchaseID != "":
		return p.PurchaseID
	case p.LoanID != "":
		return p.LoanID
	case p.ExpenseID != "":
		return p.ExpenseID
	}
	return ""
}

// StockEffect is the multiplier applied to product stock when a detail of this
// kind is created. Purchases bring stock in, sales and loans take it out.
func (k Kind) StockEffect() float64 {
	if k == KindPurchase {
		return 1
	}
	return -1
}

// PaymentOrigin is the provenance tag stored on payments created for a kind.
func (k Kind) PaymentOrigin() string {
	switch k {
	case KindSale:
		return "Pago de venta"
	case KindPurchase:
		return "Pago de compra"
	case KindLoan:
		return "Pago de pase"
	case KindExpense:
		return "Gasto"
	}
	return "Transacción"
}

// PaymentDescription synthesises the description for a payment created while
// saving document number n.
func (k Kind) PaymentDescription(n int) string {
	switch k {
	case KindSale:
		return fmt.Sprintf("Pago de venta #%d", n)
	case KindPurchase:
		return fmt.Sprintf("Pago de compra #%d", n)
	case KindLoan:
		return fmt.Sprintf("Pago de pase #%d", n)
	}
	return ""
}

// Detail is a line item owned by a sale, purchase or loan. Product name, code
// and tax fields are snapshotted at creation so historical documents stay
// immutable to later product edits.
type Detail struct {
	ID          string       `json:"saleDetailId"`
	SaleID      string       `json:"saleId,omitempty"`
	PurchaseID  string       `json:"purchaseId,omitempty"`
	LoanID      string       `json:"loanId,omitempty"`
	ProductID   string       `json:"productId"`
	Quantity    float64      `json:"quantity"`
	UnitPrice   float64      `json:"unitPrice"`
	NameProduct string       `json:"nameProduct"`
	CodeProduct string       `json:"codeProduct"`
	TypeTax     string       `json:"typeTax"`
	ValueTax    float64      `json:"valueTax"`
	Status      DetailStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Parent returns the owning document reference.
func (d Detail) Parent() ParentRef {
	return ParentRef{SaleID: d.SaleID, PurchaseID: d.PurchaseID, LoanID: d.LoanID}
}

// DetailUpdate carries the fields rewritten on every save.
type DetailUpdate struct {
	Quantity    float64      `json:"quantity"`
	UnitPrice   float64      `json:"unitPrice"`
	NameProduct string       `json:"nameProduct"`
	TypeTax     string       `json:"typeTax"`
	ValueTax    float64      `json:"valueTax"`
	Status      DetailStatus `json:"status"`
}

// Payment is a money movement owned by one sale, purchase, loan or expense.
type Payment struct {
	ID            string        `json:"transactionId"`
	SaleID        string        `json:"saleId,omitempty"`
	PurchaseID    string        `json:"purchaseId,omitempty"`
	LoanID        string        `json:"loanId,omitempty"`
	ExpenseID     string        `json:"expenseId,omitempty"`
	UserID        string        `json:"userId"`
	Date          time.Time     `json:"date"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Type          PaymentType   `json:"type"`
	Amount        float64       `json:"amount"`
	Description   string        `json:"description"`
	Origin        string        `json:"origin"`
}

// Parent returns the owning document reference.
func (p Payment) Parent() ParentRef {
	return ParentRef{SaleID: p.SaleID, PurchaseID: p.PurchaseID, LoanID: p.LoanID, ExpenseID: p.ExpenseID}
}

// PaymentUpdate carries the only fields a save re-sends for kept payments.
type PaymentUpdate struct {
	Date          time.Time     `json:"date"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Amount        float64       `json:"amount"`
}

// ErrDetailNotFound indicates a missing line item.
var ErrDetailNotFound = fmt.Errorf("trade: detail not found: %w", httpx.ErrNotFound)

// ErrPaymentNotFound indicates a missing payment.
var ErrPaymentNotFound = fmt.Errorf("trade: payment not found: %w", httpx.ErrNotFound)
