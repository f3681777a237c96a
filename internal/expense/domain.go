package expense

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// Expense is a business outlay, optionally backed by a supplier voucher.
// Every expense owns exactly one withdrawal transaction.
type Expense struct {
	ID            string    `json:"expenseId"`
	UserID        string    `json:"userId"`
	HasVoucher    bool      `json:"hasVoucher"`
	CompanyName   string    `json:"companyName,omitempty"`
	RUC           string    `json:"RUC,omitempty"`
	BillingNumber string    `json:"billingNumber,omitempty"`
	BillingType   string    `json:"billingType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// WithPayment is an expense joined with its withdrawal.
type WithPayment struct {
	Expense
	Transaction trade.Payment `json:"transaction"`
}

var (
	ErrExpenseNotFound = fmt.Errorf("expense: expense not found: %w", httpx.ErrNotFound)
	ErrMissingPayment  = fmt.Errorf("expense: expense has no transaction: %w", httpx.ErrConflict)
)
