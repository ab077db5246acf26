// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/repository"
	"usersvc/internal/domain/service"
	"usersvc/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// invalidatingGate is implemented by gates that cache a positive readiness
// result and can be told the schema went away.
type invalidatingGate interface {
	Invalidate()
}

// accountRepository implements repository.AccountRepository using GORM.
// Every write is one statement, so a cancelled context never leaves a partial row.
type accountRepository struct {
	db   *gorm.DB
	gate service.SchemaGate
	now  func() time.Time
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB, gate service.SchemaGate) repository.AccountRepository {
	return &accountRepository{
		db:   db,
		gate: gate,
		now:  time.Now,
	}
}

// Insert persists a new active account. The unique index on email_normalized
// decides concurrent registrations for the same address.
func (repo *accountRepository) Insert(ctx context.Context, email, credentialHash, name string) (*entity.Account, error) {
	if err := repo.gate.Ready(ctx); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate account id")
	}
	now := repo.now().UTC()

	row := model.AccountFromDomain(&entity.Account{
		ID:              id,
		Email:           email,
		EmailNormalized: entity.NormalizeEmail(email),
		Name:            name,
		CredentialHash:  credentialHash,
		Status:          entity.AccountStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	})

	if err := repo.db.WithContext(ctx).Clauses(clause.Returning{}).Create(row).Error; err != nil {
		return nil, repo.translate(err, "insert account")
	}

	return row.ToDomain(), nil
}

// FindByEmail retrieves an account by normalized email regardless of status.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if err := repo.gate.Ready(ctx); err != nil {
		return nil, err
	}

	return repo.findOne(ctx, "find account by email", "email_normalized = ?", entity.NormalizeEmail(email))
}

// FindByID retrieves an account by id.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if err := repo.gate.Ready(ctx); err != nil {
		return nil, err
	}

	return repo.findOne(ctx, "find account by id", "id = ?", id)
}

// Update applies the non-nil fields of changes to an active account in a
// single UPDATE ... RETURNING. A deactivated row is never modified.
func (repo *accountRepository) Update(ctx context.Context, id uuid.UUID, changes entity.AccountChanges) (*entity.Account, error) {
	if err := repo.gate.Ready(ctx); err != nil {
		return nil, err
	}

	if changes.IsEmpty() {
		account, err := repo.findOne(ctx, "find account by id", "id = ?", id)
		if err != nil {
			return nil, err
		}
		if !account.IsActive() {
			return nil, domainerrors.ErrAccountDeactivated
		}

		return account, nil
	}

	updates := map[string]any{
		"updated_at": gorm.Expr("GREATEST(updated_at, ?)", repo.now().UTC()),
	}
	if changes.Email != nil {
		updates["email"] = *changes.Email
		updates["email_normalized"] = entity.NormalizeEmail(*changes.Email)
	}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.CredentialHash != nil {
		updates["credential_hash"] = *changes.CredentialHash
	}

	var row model.AccountModel
	result := repo.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, string(entity.AccountStatusActive)).
		Updates(updates)
	if result.Error != nil {
		return nil, repo.translate(result.Error, "update account")
	}
	if result.RowsAffected == 0 {
		return nil, repo.explainMiss(ctx, id)
	}

	return row.ToDomain(), nil
}

// Deactivate sets the terminal status. An already deactivated row is returned
// untouched, keeping its updated_at.
func (repo *accountRepository) Deactivate(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if err := repo.gate.Ready(ctx); err != nil {
		return nil, err
	}

	var row model.AccountModel
	result := repo.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ? AND status <> ?", id, string(entity.AccountStatusDeactivated)).
		Updates(map[string]any{
			"status":     string(entity.AccountStatusDeactivated),
			"updated_at": gorm.Expr("GREATEST(updated_at, ?)", repo.now().UTC()),
		})
	if result.Error != nil {
		return nil, repo.translate(result.Error, "deactivate account")
	}
	if result.RowsAffected == 0 {
		return repo.findOne(ctx, "find account by id", "id = ?", id)
	}

	return row.ToDomain(), nil
}

// List pages through accounts, newest first. Listing may be served by a replica.
func (repo *accountRepository) List(ctx context.Context, filter entity.ListFilter) ([]*entity.Account, int64, error) {
	if err := repo.gate.Ready(ctx); err != nil {
		return nil, 0, err
	}

	filter = filter.Normalize()

	var total int64
	if err := repo.listScope(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, repo.translate(err, "count accounts")
	}

	var rows []model.AccountModel
	err := repo.listScope(ctx, filter).
		Order("created_at DESC, id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, repo.translate(err, "list accounts")
	}

	accounts := make([]*entity.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, rows[i].ToDomain())
	}

	return accounts, total, nil
}

func (repo *accountRepository) listScope(ctx context.Context, filter entity.ListFilter) *gorm.DB {
	query := repo.db.WithContext(ctx).Model(&model.AccountModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	return query
}

// findOne reads from the primary: callers act on the result right away
// (login after registration, update after lookup).
func (repo *accountRepository) findOne(ctx context.Context, op, cond string, args ...any) (*entity.Account, error) {
	var row model.AccountModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where(cond, args...).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, repo.translate(err, op)
	}

	return row.ToDomain(), nil
}

// explainMiss tells a missing account from a deactivated one after a guarded
// write matched no row.
func (repo *accountRepository) explainMiss(ctx context.Context, id uuid.UUID) error {
	account, err := repo.findOne(ctx, "find account by id", "id = ?", id)
	if err != nil {
		return err
	}
	if !account.IsActive() {
		return domainerrors.ErrAccountDeactivated
	}

	return domainerrors.ErrAccountNotFound
}

// translate maps driver errors onto domain errors. A missing table or column
// means the schema was reverted underneath a running process, so the cached
// readiness is dropped as well.
func (repo *accountRepository) translate(err error, op string) error {
	switch {
	case isSchemaMissing(err):
		if gate, ok := repo.gate.(invalidatingGate); ok {
			gate.Invalidate()
		}

		return domainerrors.ErrSchemaNotReady.WrapMessage(op)
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrDuplicateEmail.WrapMessage(op)
	case isNotNullConstraintViolation(err), isCheckConstraintViolation(err):
		return domainerrors.ErrValidationFailed.WrapMessage(op)
	default:
		return domainerrors.NewDatabaseExecuteError(err, op)
	}
}
