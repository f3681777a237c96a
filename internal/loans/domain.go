// Package loans manages pase documents: products handed to a reseller who
// later returns them or sells them on.
package loans

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// State says whether any loaned quantity is still outstanding.
type State string

const (
	StateOutstanding State = "POR DEVOLVER"
	StateReturned    State = "DEVUELTO"
)

// Loan is a pase document. Its line items split into loaned (still out or
// already returned) and sold subsets, with a total per subset. The grand
// total is always the sum of the three.
type Loan struct {
	ID                    string    `json:"loanId"`
	Number                int       `json:"number"`
	ClientID              string    `json:"clientId"`
	UserID                string    `json:"userId"`
	Date                  time.Time `json:"date"`
	State                 State     `json:"state"`
	TotalLoanedReturned   float64   `json:"totalLoanedReturned"`
	TotalLoanedUnreturned float64   `json:"totalLoanedUnreturned"`
	TotalSold             float64   `json:"totalSold"`
	TotalAmount           float64   `json:"totalAmount"`
	CreatedAt             time.Time `json:"createdAt"`
}

var (
	// ErrLoanNotFound indicates a missing loan.
	ErrLoanNotFound = fmt.Errorf("loans: loan not found: %w", httpx.ErrNotFound)
	// ErrNoClient indicates a save without a counterparty.
	ErrNoClient = fmt.Errorf("loans: a client is required: %w", httpx.ErrValidation)
	// ErrNoItems indicates a save with an empty item list.
	ErrNoItems = fmt.Errorf("loans: at least one product is required: %w", httpx.ErrValidation)
)
