// Package users manages the operator accounts that sign documents and
// receive receipt notifications.
package users

import (
	"fmt"
	"time"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// User is an operator of the point of sale. There is no password here;
// identity comes from the store front and accounts only attribute documents.
type User struct {
	ID        string    `json:"userId"`
	Names     string    `json:"names"`
	Surnames  string    `json:"surnames"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	// ErrUserNotFound indicates a missing user.
	ErrUserNotFound = fmt.Errorf("users: user not found: %w", httpx.ErrNotFound)
	// ErrDuplicateUsername indicates a username collision.
	ErrDuplicateUsername = fmt.Errorf("users: username already in use: %w", httpx.ErrDuplicate)
)
