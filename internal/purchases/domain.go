// Package purchases manages purchase documents registered against a
// supplier invoice.
package purchases

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// State is the settlement state of a purchase.
type State string

const (
	StatePaid      State = "PAGADO"
	StateDebt      State = "DEUDA"
	StateCancelled State = "CANCELADO"
)

// Valid reports whether the state is known.
func (s State) Valid() bool {
	switch s {
	case StatePaid, StateDebt, StateCancelled:
		return true
	}
	return false
}

// Purchase is a purchase document. BillingNumber and BillingType reference
// the supplier's paper invoice, not our own e-invoicing.
type Purchase struct {
	ID                   string    `json:"purchaseId"`
	Number               int       `json:"number"`
	SupplierID           string    `json:"supplierId"`
	UserID               string    `json:"userId"`
	Date                 time.Time `json:"date"`
	State                State     `json:"state"`
	TotalAmount          float64   `json:"totalAmount"`
	Discount             float64   `json:"discount"`
	IsPercentageDiscount bool      `json:"isPercentageDiscount"`
	BillingNumber        string    `json:"billingNumber"`
	BillingType          string    `json:"billingType"`
	Shipping             float64   `json:"shipping"`
	CreatedAt            time.Time `json:"createdAt"`
}

var (
	// ErrPurchaseNotFound indicates a missing purchase.
	ErrPurchaseNotFound = fmt.Errorf("purchases: purchase not found: %w", httpx.ErrNotFound)
	// ErrNoSupplier indicates a save without a counterparty.
	ErrNoSupplier = fmt.Errorf("purchases: a supplier is required: %w", httpx.ErrValidation)
	// ErrNoItems indicates a save with an empty item list.
	ErrNoItems = fmt.Errorf("purchases: at least one product is required: %w", httpx.ErrValidation)
	// ErrInvalidState indicates an unknown settlement state.
	ErrInvalidState = fmt.Errorf("purchases: unknown state: %w", httpx.ErrValidation)
)
