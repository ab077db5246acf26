// Package memory is an in-process account store for tests and local runs.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/repository"
	"usersvc/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// accountRepository keeps accounts in maps guarded by one mutex. The email
// index is checked and written under the same lock, which is this backend's
// uniqueness constraint.
type accountRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entity.Account
	byEmail map[string]uuid.UUID
	gate    service.SchemaGate
	now     func() time.Time
}

// NewAccountRepository creates an empty store.
func NewAccountRepository(gate service.SchemaGate) repository.AccountRepository {
	return &accountRepository{
		byID:    make(map[uuid.UUID]*entity.Account),
		byEmail: make(map[string]uuid.UUID),
		gate:    gate,
		now:     time.Now,
	}
}

func (repo *accountRepository) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	return repo.gate.Ready(ctx)
}

func (repo *accountRepository) Insert(ctx context.Context, email, credentialHash, name string) (*entity.Account, error) {
	if err := repo.ready(ctx); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate account id")
	}

	normalized := entity.NormalizeEmail(email)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, taken := repo.byEmail[normalized]; taken {
		return nil, domainerrors.ErrDuplicateEmail.WrapMessage("insert account")
	}

	now := repo.now().UTC()
	acc := &entity.Account{
		ID:              id,
		Email:           email,
		EmailNormalized: normalized,
		Name:            name,
		CredentialHash:  credentialHash,
		Status:          entity.AccountStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	repo.byID[id] = acc
	repo.byEmail[normalized] = id

	return clone(acc), nil
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if err := repo.ready(ctx); err != nil {
		return nil, err
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := repo.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}

	return clone(repo.byID[id]), nil
}

func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if err := repo.ready(ctx); err != nil {
		return nil, err
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	acc, ok := repo.byID[id]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}

	return clone(acc), nil
}

func (repo *accountRepository) Update(ctx context.Context, id uuid.UUID, changes entity.AccountChanges) (*entity.Account, error) {
	if err := repo.ready(ctx); err != nil {
		return nil, err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.byID[id]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}
	if !acc.IsActive() {
		return nil, domainerrors.ErrAccountDeactivated
	}
	if changes.IsEmpty() {
		return clone(acc), nil
	}

	next := *acc
	if changes.Email != nil {
		normalized := entity.NormalizeEmail(*changes.Email)
		if owner, taken := repo.byEmail[normalized]; taken && owner != id {
			return nil, domainerrors.ErrDuplicateEmail.WrapMessage("update account")
		}
		next.Email = *changes.Email
		next.EmailNormalized = normalized
	}
	if changes.Name != nil {
		next.Name = *changes.Name
	}
	if changes.CredentialHash != nil {
		next.CredentialHash = *changes.CredentialHash
	}
	next.UpdatedAt = repo.touch(acc.UpdatedAt)

	if next.EmailNormalized != acc.EmailNormalized {
		delete(repo.byEmail, acc.EmailNormalized)
		repo.byEmail[next.EmailNormalized] = id
	}
	repo.byID[id] = &next

	return clone(&next), nil
}

func (repo *accountRepository) Deactivate(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if err := repo.ready(ctx); err != nil {
		return nil, err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.byID[id]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}
	if acc.Status == entity.AccountStatusDeactivated {
		return clone(acc), nil
	}

	next := *acc
	next.Status = entity.AccountStatusDeactivated
	next.UpdatedAt = repo.touch(acc.UpdatedAt)
	repo.byID[id] = &next

	return clone(&next), nil
}

func (repo *accountRepository) List(ctx context.Context, filter entity.ListFilter) ([]*entity.Account, int64, error) {
	if err := repo.ready(ctx); err != nil {
		return nil, 0, err
	}

	filter = filter.Normalize()

	repo.mu.RLock()
	matched := make([]*entity.Account, 0, len(repo.byID))
	for _, acc := range repo.byID {
		if filter.Status == "" || acc.Status == filter.Status {
			matched = append(matched, clone(acc))
		}
	}
	repo.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *entity.Account) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return slices.Compare(a.ID[:], b.ID[:])
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*entity.Account{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))

	return matched[filter.Offset:end], total, nil
}

// touch keeps updated_at monotonic even if the wall clock steps backwards.
func (repo *accountRepository) touch(prev time.Time) time.Time {
	now := repo.now().UTC()
	if now.Before(prev) {
		return prev
	}

	return now
}

func clone(acc *entity.Account) *entity.Account {
	if acc == nil {
		return nil
	}
	c := *acc

	return &c
}
