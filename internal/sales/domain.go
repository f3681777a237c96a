// Package sales manages sale documents: numbering, saving and the receipt
// submission that rides along with a save.
package sales

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// State is the settlement state of a sale.
type State string

const (
	StatePaid State = "PAGADO"
	StateDebt State = "DEUDA"
)

// Valid reports whether the state is known.
func (s State) Valid() bool {
	return s == StatePaid || s == StateDebt
}

// Sale is a sale document. Line items and payments live in their own tables
// keyed by the sale id.
type Sale struct {
	ID                   string    `json:"saleId"`
	Number               int       `json:"number"`
	ClientID             string    `json:"clientId"`
	UserID               string    `json:"userId"`
	Date                 time.Time `json:"date"`
	State                State     `json:"state"`
	TotalAmount          float64   `json:"totalAmount"`
	Discount             float64   `json:"discount"`
	IsPercentageDiscount bool      `json:"isPercentageDiscount"`
	CreatedAt            time.Time `json:"createdAt"`
}

var (
	// ErrSaleNotFound indicates a missing sale.
	ErrSaleNotFound = fmt.Errorf("sales: sale not found: %w", httpx.ErrNotFound)
	// ErrNoClient indicates a save without a counterparty.
	ErrNoClient = fmt.Errorf("sales: a client is required: %w", httpx.ErrValidation)
	// ErrNoItems indicates a save with an empty item list.
	ErrNoItems = fmt.Errorf("sales: at least one product is required: %w", httpx.ErrValidation)
	// ErrInvalidState indicates an unknown settlement state.
	ErrInvalidState = fmt.Errorf("sales: unknown state: %w", httpx.ErrValidation)
)
