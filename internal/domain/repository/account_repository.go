// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"usersvc/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountRepository is the durable account store.
//
// Every method fails with ErrSchemaNotReady while the schema is behind the
// latest migration. Uniqueness of the normalized email is enforced by the
// backend itself, so concurrent writers racing on one address see exactly one
// success and ErrDuplicateEmail for the rest.
type AccountRepository interface {
	// Insert persists a new active account and assigns its id and timestamps.
	Insert(ctx context.Context, email, credentialHash, name string) (*entity.Account, error)

	// FindByEmail looks up an account by normalized email, whatever its status.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByID looks up an account by id.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// Update applies a partial change and bumps updated_at in one statement.
	// It fails with ErrAccountDeactivated for deactivated accounts and never
	// modifies them.
	Update(ctx context.Context, id uuid.UUID, changes entity.AccountChanges) (*entity.Account, error)

	// Deactivate moves the account to its terminal status. Deactivating an
	// already deactivated account returns the unchanged record.
	Deactivate(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// List pages through accounts newest first and reports the total match count.
	List(ctx context.Context, filter entity.ListFilter) ([]*entity.Account, int64, error)
}
