package billing

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// DocType is the electronic receipt kind accepted by SUNAT.
type DocType string

const (
	Factura DocType = "Factura"
	Boleta  DocType = "Boleta"
)

// Serie returns the document series used on the wire.
func (t DocType) Serie() string {
	if t == Factura {
		return "F001"
	}
	return "B001"
}

// TypeCode returns the SUNAT catalog 01 invoice type code.
func (t DocType) TypeCode() string {
	if t == Factura {
		return "01"
	}
	return "03"
}

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	return t == Factura || t == Boleta
}

// Billing lifecycle states.
const (
	StatePendiente = "PENDIENTE"
	StateExcepcion = "EXCEPCION"
	StateAceptado  = "ACEPTADO"
	StateRechazado = "RECHAZADO"
)

// ValidState reports whether s is one of the billing lifecycle states.
func ValidState(s string) bool {
	switch s {
	case StatePendiente, StateExcepcion, StateAceptado, StateRechazado:
		return true
	}
	return false
}

// Billing is a persisted electronic receipt record tied to one sale.
type Billing struct {
	ID            string    `json:"billingId"`
	SaleID        string    `json:"saleId"`
	Type          DocType   `json:"type"`
	State         string    `json:"state"`
	Number        int       `json:"number"`
	IDSunat       string    `json:"idSunat"`
	FileNameSunat string    `json:"fileNameSunat"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

var (
	ErrBillingNotFound = fmt.Errorf("billing: billing not found: %w", httpx.ErrNotFound)
	ErrInvalidState    = fmt.Errorf("billing: invalid state: %w", httpx.ErrValidation)
	ErrInvalidDocType  = fmt.Errorf("billing: invalid document type: %w", httpx.ErrValidation)
	ErrNoLines         = fmt.Errorf("billing: sale has no products: %w", httpx.ErrValidation)
)
