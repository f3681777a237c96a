// Package partner manages clients and suppliers. Both roles share one
// entity; the type field says which hats a counterparty wears.
package partner

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// ClientType labels the counterparty role.
type ClientType string

const (
	TypeClient   ClientType = "Cliente"
	TypeSupplier ClientType = "Proveedor"
	TypeBoth     ClientType = "Cliente/Proveedor"
)

// Valid reports whether the type is a known role.
func (t ClientType) Valid() bool {
	switch t {
	case TypeClient, TypeSupplier, TypeBoth:
		return true
	}
	return false
}

// DocumentType is a Peruvian identity document kind.
type DocumentType string

const (
	DocDNI DocumentType = "DNI"
	DocRUC DocumentType = "RUC"
)

// Document is an optional one-to-one identity record for a client.
type Document struct {
	ID           string       `json:"documentId,omitempty"`
	TypeDocument DocumentType `json:"typeDocument"`
	Number       string       `json:"number"`
}

// Client is a counterparty in sales, purchases or loans.
type Client struct {
	ID        string     `json:"clientId"`
	Name      string     `json:"name"`
	Type      ClientType `json:"type"`
	Phone     string     `json:"phone,omitempty"`
	Mail      string     `json:"mail,omitempty"`
	Address   string     `json:"address,omitempty"`
	Document  *Document  `json:"document,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

var (
	// ErrClientNotFound indicates a missing client.
	ErrClientNotFound = fmt.Errorf("partner: client not found: %w", httpx.ErrNotFound)
	// ErrInvalidClientType indicates an unknown role label.
	ErrInvalidClientType = fmt.Errorf("partner: unknown client type: %w", httpx.ErrValidation)
)
