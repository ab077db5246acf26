package model

import (
	"time"

	"usersvc/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. The schema itself is owned by the
// SQL migrations; the tags document it and drive column mapping.
type AccountModel struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email           string    `gorm:"column:email;type:text;not null"`
	EmailNormalized string    `gorm:"column:email_normalized;type:text;not null;uniqueIndex:accounts_email_normalized_key"`
	Name            string    `gorm:"column:name;type:text;not null;default:''"`
	CredentialHash  string    `gorm:"column:credential_hash;type:text;not null"`
	Status          string    `gorm:"column:status;type:text;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain maps the persistence model to the domain entity.
func (m *AccountModel) ToDomain() *entity.Account {
	if m == nil {
		return nil
	}

	return &entity.Account{
		ID:              m.ID,
		Email:           m.Email,
		EmailNormalized: m.EmailNormalized,
		Name:            m.Name,
		CredentialHash:  m.CredentialHash,
		Status:          entity.AccountStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// AccountFromDomain maps the domain entity to the persistence model.
func AccountFromDomain(a *entity.Account) *AccountModel {
	if a == nil {
		return nil
	}

	return &AccountModel{
		ID:              a.ID,
		Email:           a.Email,
		EmailNormalized: a.EmailNormalized,
		Name:            a.Name,
		CredentialHash:  a.CredentialHash,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
