// Package catalog manages the product list and its tax classification.
package catalog

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// TaxType is a SUNAT affectation category. The label carries the printed
// rate because receipts show it verbatim.
type TaxType string

const (
	TaxIGV        TaxType = "IGV (18.00%)"
	TaxExonerated TaxType = "Exonerado (0.00%)"
	TaxUnaffected TaxType = "Inafecto (0.00%)"
	TaxFree       TaxType = "Gratuita (0.00%)"
	TaxExport     TaxType = "Exportación (0.00%)"
)

// Rate returns the canonical fraction for the category. Only IGV carries a
// nonzero rate.
func (t TaxType) Rate() float64 {
	if t == TaxIGV {
		return 0.18
	}
	return 0
}

// Valid reports whether the category is one of the five known ones.
func (t TaxType) Valid() bool {
	switch t {
	case TaxIGV, TaxExonerated, TaxUnaffected, TaxFree, TaxExport:
		return true
	}
	return false
}

// Product is a sellable item. Price is tax inclusive when IncludeTax is set.
type Product struct {
	ID            string    `json:"productId"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Price         float64   `json:"price"`
	StockQuantity float64   `json:"stockQuantity"`
	TypeTax       TaxType   `json:"typeTax"`
	ValueTax      float64   `json:"valueTax"`
	IncludeTax    bool      `json:"includeTax"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductSale is one sale that moved a given product, with the matching
// line quantities flattened in.
type ProductSale struct {
	SaleID     string    `json:"saleId"`
	Number     int       `json:"number"`
	Date       time.Time `json:"date"`
	Username   string    `json:"username"`
	ClientName string    `json:"clientName"`
	Quantity   float64   `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
}

var (
	// ErrProductNotFound indicates a missing product.
	ErrProductNotFound = fmt.Errorf("catalog: product not found: %w", httpx.ErrNotFound)
	// ErrDuplicateCode indicates a SKU collision.
	ErrDuplicateCode = fmt.Errorf("catalog: product code already in use: %w", httpx.ErrDuplicate)
	// ErrInvalidTaxType indicates an unknown affectation category.
	ErrInvalidTaxType = fmt.Errorf("catalog: unknown tax type: %w", httpx.ErrValidation)
	// ErrTaxMismatch indicates a valueTax that contradicts its typeTax.
	ErrTaxMismatch = fmt.Errorf("catalog: valueTax does not match typeTax rate: %w", httpx.ErrValidation)
)
