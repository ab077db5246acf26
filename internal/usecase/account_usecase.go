// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"usersvc/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"max=100"`
}

// AuthenticateInput defines the data required for a login attempt.
type AuthenticateInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangeCredentialInput carries the current and the replacement secret.
type ChangeCredentialInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// --- Output DTOs ---

// LoginOutput returns the authenticated account and its access token.
type LoginOutput struct {
	Account     *entity.Account `json:"account"`
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

// ListOutput is one page of accounts.
type ListOutput struct {
	Accounts []*entity.Account `json:"accounts"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// AccountUsecase defines the account lifecycle operations the delivery layer depends on.
type AccountUsecase interface {
	// Register creates an active account after validating the email and the secret strength.
	Register(ctx context.Context, input RegisterInput) (*entity.Account, error)

	// Authenticate checks a login attempt. Unknown email, deactivated account and
	// wrong secret all fail with the same AuthFailed error.
	Authenticate(ctx context.Context, input AuthenticateInput) (*entity.Account, error)

	// Login authenticates and issues an access token.
	Login(ctx context.Context, input AuthenticateInput) (*LoginOutput, error)

	ChangeCredential(ctx context.Context, id uuid.UUID, input ChangeCredentialInput) (*entity.Account, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, newEmail string) (*entity.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*entity.Account, error)

	// Deactivate is idempotent.
	Deactivate(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	Get(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	List(ctx context.Context, filter entity.ListFilter) (*ListOutput, error)

	// Fields describes the account fields and which of them are editable.
	Fields() []entity.FieldDescriptor
}
