package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"usersvc/config"
	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/repository"
	"usersvc/internal/infra/auth"
	"usersvc/internal/infra/persistence/memory"
	"usersvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const aliceSecret = "correct horse battery staple"

type testEnv struct {
	svc  usecase.AccountUsecase
	repo repository.AccountRepository
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.NewAccountRepository(memory.NewSchemaGate())
	hasher := auth.NewArgon2HasherWithParams(
		auth.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		auth.PasswordPolicy{MinLength: 8, MaxLength: 128},
	)
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	svc := NewAccountService(AccountServiceParams{
		AccountRepo:  repo,
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       newDiscardLogger(),
	})

	return &testEnv{svc: svc, repo: repo}
}

func (env *testEnv) register(t *testing.T, email string) *entity.Account {
	t.Helper()

	acc, err := env.svc.Register(context.Background(), usecase.RegisterInput{Email: email, Password: aliceSecret})
	require.NoError(t, err)

	return acc
}

func TestAccountService_AliceScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc := env.register(t, "alice@example.com")
	assert.Equal(t, entity.AccountStatusActive, acc.Status)

	authed, err := env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "alice@example.com", Password: aliceSecret})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, authed.ID)

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)

	deactivated, err := env.svc.Deactivate(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AccountStatusDeactivated, deactivated.Status)

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "alice@example.com", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)
}

func TestAccountService_AuthFailedIsUniform(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "active@example.com")
	gone := env.register(t, "gone@example.com")
	_, err := env.svc.Deactivate(ctx, gone.ID)
	require.NoError(t, err)

	attempts := map[string]usecase.AuthenticateInput{
		"wrong secret":    {Email: "active@example.com", Password: "not the secret"},
		"unknown email":   {Email: "nobody@example.com", Password: aliceSecret},
		"deactivated":     {Email: "gone@example.com", Password: aliceSecret},
		"malformed email": {Email: "not-an-email", Password: aliceSecret},
	}

	var messages []string
	for name, input := range attempts {
		t.Run(name, func(t *testing.T) {
			acc, err := env.svc.Authenticate(ctx, input)
			assert.Nil(t, acc)
			require.Error(t, err)
			assert.Equal(t, domainerrors.ErrAuthFailed, err, "the error value itself is identical")
			messages = append(messages, err.Error())
		})
	}

	for _, msg := range messages {
		assert.Equal(t, "invalid credentials", msg)
	}
}

func TestAccountService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.svc.Register(ctx, usecase.RegisterInput{Email: "  Bob@Example.com ", Password: aliceSecret, Name: " Bob "})
	require.NoError(t, err)
	assert.Equal(t, "Bob@Example.com", acc.Email)
	assert.Equal(t, "bob@example.com", acc.EmailNormalized)
	assert.Equal(t, "Bob", acc.Name)
	assert.True(t, strings.HasPrefix(acc.CredentialHash, "$argon2id$"))

	_, err = env.svc.Register(ctx, usecase.RegisterInput{Email: "bob@example.com", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateEmail)

	_, err = env.svc.Register(ctx, usecase.RegisterInput{Email: "no-at-sign", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidEmail)

	_, err = env.svc.Register(ctx, usecase.RegisterInput{Email: "carol@example.com", Password: "short"})
	assert.ErrorIs(t, err, domainerrors.ErrWeakSecret)

	_, err = env.repo.FindByEmail(ctx, "carol@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound, "a rejected secret never reaches the store")
}

func TestAccountService_ConcurrentRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const callers = 16
	variants := []string{"A@x.com", " a@x.com ", "a@X.com"}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		dups int
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Register(ctx, usecase.RegisterInput{Email: variants[i%len(variants)], Password: aliceSecret})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domainerrors.ErrDuplicateEmail):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, dups)
}

func TestAccountService_ChangeCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acc := env.register(t, "alice@example.com")

	_, err := env.svc.ChangeCredential(ctx, acc.ID, usecase.ChangeCredentialInput{OldPassword: "guess", NewPassword: "another long secret"})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)

	_, err = env.svc.ChangeCredential(ctx, acc.ID, usecase.ChangeCredentialInput{OldPassword: aliceSecret, NewPassword: "tiny"})
	assert.ErrorIs(t, err, domainerrors.ErrWeakSecret)

	_, err = env.svc.ChangeCredential(ctx, acc.ID, usecase.ChangeCredentialInput{OldPassword: aliceSecret, NewPassword: "another long secret"})
	require.NoError(t, err)

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "alice@example.com", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "alice@example.com", Password: "another long secret"})
	assert.NoError(t, err)

	_, err = env.svc.ChangeCredential(ctx, uuid.New(), usecase.ChangeCredentialInput{OldPassword: aliceSecret, NewPassword: "another long secret"})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)

	_, err = env.svc.Deactivate(ctx, acc.ID)
	require.NoError(t, err)
	_, err = env.svc.ChangeCredential(ctx, acc.ID, usecase.ChangeCredentialInput{OldPassword: "another long secret", NewPassword: "a third long secret"})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)
}

func TestAccountService_UpdateEmailAndProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	env.register(t, "bob@example.com")

	_, err := env.svc.UpdateEmail(ctx, alice.ID, "BOB@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateEmail)

	_, err = env.svc.UpdateEmail(ctx, alice.ID, "nope")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidEmail)

	updated, err := env.svc.UpdateEmail(ctx, alice.ID, " alice@new.example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", updated.Email)

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "alice@new.example.com", Password: aliceSecret})
	assert.NoError(t, err)

	named, err := env.svc.UpdateProfile(ctx, alice.ID, "  Alice A. ")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", named.Name)

	_, err = env.svc.Deactivate(ctx, alice.ID)
	require.NoError(t, err)
	_, err = env.svc.UpdateProfile(ctx, alice.ID, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrAccountDeactivated)

	_, err = env.svc.UpdateEmail(ctx, uuid.New(), "x@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_DeactivateIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acc := env.register(t, "alice@example.com")

	first, err := env.svc.Deactivate(ctx, acc.ID)
	require.NoError(t, err)
	second, err := env.svc.Deactivate(ctx, acc.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	_, err = env.svc.Deactivate(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_LegacyCredentialUpgrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte(aliceSecret), bcrypt.MinCost)
	require.NoError(t, err)
	acc, err := env.repo.Insert(ctx, "legacy@example.com", string(legacy), "")
	require.NoError(t, err)

	authed, err := env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "legacy@example.com", Password: aliceSecret})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, authed.ID)

	stored, err := env.repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.CredentialHash, "$argon2id$"), "verifier upgraded on login")

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "legacy@example.com", Password: aliceSecret})
	assert.NoError(t, err)
}

func TestAccountService_CorruptCredentialFailsAuth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.repo.Insert(ctx, "broken@example.com", "$argon2id$garbage", "")
	require.NoError(t, err)

	_, err = env.svc.Authenticate(ctx, usecase.AuthenticateInput{Email: "broken@example.com", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)
}

func TestAccountService_Login(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice@example.com")

	out, err := env.svc.Login(context.Background(), usecase.AuthenticateInput{Email: "Alice@Example.com", Password: aliceSecret})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, out.Account.ID)
	assert.NotEmpty(t, out.AccessToken)
	assert.False(t, out.ExpiresAt.IsZero())

	_, err = env.svc.Login(context.Background(), usecase.AuthenticateInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrAuthFailed)
}

func TestAccountService_ListAndFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := range 3 {
		env.register(t, fmt.Sprintf("user%d@example.com", i))
	}

	out, err := env.svc.List(ctx, entity.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Accounts, 2)
	assert.Equal(t, 2, out.Limit)

	_, err = env.svc.List(ctx, entity.ListFilter{Status: "banned"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	for _, f := range env.svc.Fields() {
		assert.NotEqual(t, "credential_hash", f.Name)
	}
}

func TestAccountService_SchemaNotReady(t *testing.T) {
	repo := memory.NewAccountRepository(closedGate{})
	svc := NewAccountService(AccountServiceParams{
		AccountRepo: repo,
		Hasher:      auth.NewArgon2HasherWithParams(auth.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}, auth.PasswordPolicy{MinLength: 8}),
		Logger:      newDiscardLogger(),
	})

	_, err := svc.Register(context.Background(), usecase.RegisterInput{Email: "a@x.com", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrSchemaNotReady)

	_, err = svc.Authenticate(context.Background(), usecase.AuthenticateInput{Email: "a@x.com", Password: aliceSecret})
	assert.ErrorIs(t, err, domainerrors.ErrSchemaNotReady, "an unavailable store is not reported as bad credentials")
}

type closedGate struct{}

func (closedGate) Ready(context.Context) error { return domainerrors.ErrSchemaNotReady }
