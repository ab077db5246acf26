package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"usersvc/config"
	domainerrors "usersvc/internal/domain/errors"
)

// PasswordPolicy is the minimum-strength rule applied before hashing.
type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSpecial   bool
}

// NewPasswordPolicy builds the policy from configuration.
func NewPasswordPolicy(cfg *config.PasswordStrengthConfig) PasswordPolicy {
	if cfg == nil {
		return PasswordPolicy{MinLength: 8, MaxLength: 128}
	}

	return PasswordPolicy{
		MinLength:        cfg.MinLength,
		MaxLength:        cfg.MaxLength,
		RequireUppercase: cfg.RequireUppercase,
		RequireLowercase: cfg.RequireLowercase,
		RequireNumbers:   cfg.RequireNumbers,
		RequireSpecial:   cfg.RequireSpecial,
	}
}

// Validate returns ErrWeakSecret describing the first rule the password breaks.
func (p PasswordPolicy) Validate(password string) error {
	length := utf8.RuneCountInString(password)
	if length < p.MinLength {
		return domainerrors.ErrWeakSecret.WithDetails(fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		return domainerrors.ErrWeakSecret.WithDetails(fmt.Sprintf("must be at most %d characters", p.MaxLength))
	}
	if strings.TrimSpace(password) == "" {
		return domainerrors.ErrWeakSecret.WithDetails("must not be blank")
	}

	var upper, lower, number, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	var missing []string
	if p.RequireUppercase && !upper {
		missing = append(missing, "an uppercase letter")
	}
	if p.RequireLowercase && !lower {
		missing = append(missing, "a lowercase letter")
	}
	if p.RequireNumbers && !number {
		missing = append(missing, "a number")
	}
	if p.RequireSpecial && !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return domainerrors.ErrWeakSecret.WithDetails("must contain " + strings.Join(missing, ", "))
	}

	return nil
}
