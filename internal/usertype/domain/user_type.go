// Package domain defines the user type catalogue (e.g. Buyer, Seller) that storefront
// accounts can be classified under.
package domain

import (
	"strings"
	"time"
)

// UserType is a named account category. Names are unique ignoring case.
type UserType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeName trims surrounding whitespace. Case is kept for display.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NameKey is the uniqueness key for a name.
func NameKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}
