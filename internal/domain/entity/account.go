// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusDeactivated AccountStatus = "deactivated"
)

// IsValid reports whether the status may be persisted.
func (s AccountStatus) IsValid() bool {
	return s == AccountStatusActive || s == AccountStatusDeactivated
}

// Account is a user's durable identity record.
type Account struct {
	ID              uuid.UUID     `json:"id"`         // Immutable, never reused.
	Email           string        `json:"email"`      // Login identifier as entered (trimmed).
	EmailNormalized string        `json:"-"`          // Lower-cased, trimmed email; unique across all accounts.
	Name            string        `json:"name"`       // Optional display name.
	CredentialHash  string        `json:"-"`          // Credential verifier. Never serialized or logged.
	Status          AccountStatus `json:"status"`     // active or deactivated.
	CreatedAt       time.Time     `json:"created_at"` // Set by the store on insert.
	UpdatedAt       time.Time     `json:"updated_at"` // Set by the store on every write.
}

// IsActive reports whether the account can authenticate.
func (a *Account) IsActive() bool {
	return a != nil && a.Status == AccountStatusActive
}

// AccountChanges is a partial update. Nil fields are left untouched.
type AccountChanges struct {
	Email          *string
	Name           *string
	CredentialHash *string
}

// IsEmpty reports whether the change set updates nothing.
func (c AccountChanges) IsEmpty() bool {
	return c.Email == nil && c.Name == nil && c.CredentialHash == nil
}

// ListFilter pages through accounts, newest first.
type ListFilter struct {
	Status AccountStatus // Empty means any status.
	Limit  int
	Offset int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalize clamps paging values into the supported range.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	return f
}

// NormalizeEmail returns the comparison form of an email: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is non-empty, contains "@" and has no
// surrounding whitespace. Callers trim user input before validating.
func ValidEmail(email string) bool {
	if email == "" || strings.TrimSpace(email) != email {
		return false
	}

	at := strings.LastIndex(email, "@")

	return at > 0 && at < len(email)-1
}
