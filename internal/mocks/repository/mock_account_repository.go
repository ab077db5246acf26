// Package repository holds testify mocks of the domain repository interfaces,
// laid out the way mockery's expecter style lays them out.
package repository

import (
	"context"

	"usersvc/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepository type
type MockAccountRepository struct {
	mock.Mock
}

// MockAccountRepository_Expecter records typed expectations.
type MockAccountRepository_Expecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (_m *MockAccountRepository) EXPECT() *MockAccountRepository_Expecter {
	return &MockAccountRepository_Expecter{mock: &_m.Mock}
}

// NewMockAccountRepository creates a mock that asserts its expectations on cleanup.
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func accountResult(ret mock.Arguments) (*entity.Account, error) {
	var account *entity.Account
	if v := ret.Get(0); v != nil {
		account = v.(*entity.Account)
	}

	return account, ret.Error(1)
}

// Insert provides a mock function with given fields: ctx, email, credentialHash, name
func (_m *MockAccountRepository) Insert(ctx context.Context, email, credentialHash, name string) (*entity.Account, error) {
	return accountResult(_m.Called(ctx, email, credentialHash, name))
}

// MockAccountRepository_Insert_Call wraps the Insert expectation.
type MockAccountRepository_Insert_Call struct {
	*mock.Call
}

// Insert is a helper method to define mock.On call
func (_e *MockAccountRepository_Expecter) Insert(ctx, email, credentialHash, name any) *MockAccountRepository_Insert_Call {
	return &MockAccountRepository_Insert_Call{Call: _e.mock.On("Insert", ctx, email, credentialHash, name)}
}

func (_c *MockAccountRepository_Insert_Call) Return(account *entity.Account, err error) *MockAccountRepository_Insert_Call {
	_c.Call.Return(account, err)

	return _c
}

// FindByEmail provides a mock function with given fields: ctx, email
func (_m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return accountResult(_m.Called(ctx, email))
}

// MockAccountRepository_FindByEmail_Call wraps the FindByEmail expectation.
type MockAccountRepository_FindByEmail_Call struct {
	*mock.Call
}

// FindByEmail is a helper method to define mock.On call
func (_e *MockAccountRepository_Expecter) FindByEmail(ctx, email any) *MockAccountRepository_FindByEmail_Call {
	return &MockAccountRepository_FindByEmail_Call{Call: _e.mock.On("FindByEmail", ctx, email)}
}

func (_c *MockAccountRepository_FindByEmail_Call) Return(account *entity.Account, err error) *MockAccountRepository_FindByEmail_Call {
	_c.Call.Return(account, err)

	return _c
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return accountResult(_m.Called(ctx, id))
}

// MockAccountRepository_FindByID_Call wraps the FindByID expectation.
type MockAccountRepository_FindByID_Call struct {
	*mock.Call
}

// FindByID is a helper method to define mock.On call
func (_e *MockAccountRepository_Expecter) FindByID(ctx, id any) *MockAccountRepository_FindByID_Call {
	return &MockAccountRepository_FindByID_Call{Call: _e.mock.On("FindByID", ctx, id)}
}

func (_c *MockAccountRepository_FindByID_Call) Return(account *entity.Account, err error) *MockAccountRepository_FindByID_Call {
	_c.Call.Return(account, err)

	return _c
}

// Update provides a mock function with given fields: ctx, id, changes
func (_m *MockAccountRepository) Update(ctx context.Context, id uuid.UUID, changes entity.AccountChanges) (*entity.Account, error) {
	return accountResult(_m.Called(ctx, id, changes))
}

// MockAccountRepository_Update_Call wraps the Update expectation.
type MockAccountRepository_Update_Call struct {
	*mock.Call
}

// Update is a helper method to define mock.On call
func (_e *MockAccountRepository_Expecter) Update(ctx, id, changes any) *MockAccountRepository_Update_Call {
	return &MockAccountRepository_Update_Call{Call: _e.mock.On("Update", ctx, id, changes)}
}

func (_c *MockAccountRepository_Update_Call) Return(account *entity.Account, err error) *MockAccountRepository_Update_Call {
	_c.Call.Return(account, err)

	return _c
}

// Deactivate provides a mock function with given fields: ctx, id
func (_m *MockAccountRepository) Deactivate(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return accountResult(_m.Called(ctx, id))
}

// MockAccountRepository_Deactivate_Call wraps the Deactivate expectation.
type MockAccountRepository_Deactivate_Call struct {
	*mock.Call
}

// Deactivate is a helper method to define mock.On call
func (_e *MockAccountRepository_Expecter) Deactivate(ctx, id any) *MockAccountRepository_Deactivate_Call {
	return &MockAccountRepository_Deactivate_Call{Call: _e.mock.On("Deactivate", ctx, id)}
}

func (_c *MockAccountRepository_Deactivate_Call) Return(account *entity.Account, err error) *MockAccountRepository_Deactivate_Call {
	_c.Call.Return(account, err)

	return _c
}

// List provides a mock function with given fields: ctx, filter
func (_m *MockAccountRepository) List(ctx context.Context, filter entity.ListFilter) ([]*entity.Account, int64, error) {
	ret := _m.Called(ctx, filter)

	var accounts []*entity.Account
	if v := ret.Get(0); v != nil {
		accounts = v.([]*entity.Account)
	}

	return accounts, ret.Get(1).(int64), ret.Error(2)
}

// MockAccountRepository_List_Call wraps the List expectation.
type MockAccountRepository_List_Call struct {
	*mock.Call
}

// List is a helper method to define mock.On call
func (_e *MockAccountRepository_Expecter) List(ctx, filter any) *MockAccountRepository_List_Call {
	return &MockAccountRepository_List_Call{Call: _e.mock.On("List", ctx, filter)}
}

func (_c *MockAccountRepository_List_Call) Return(accounts []*entity.Account, total int64, err error) *MockAccountRepository_List_Call {
	_c.Call.Return(accounts, total, err)

	return _c
}
