// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	deliverycontext "usersvc/internal/delivery/context"
	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/repository"
	"usersvc/internal/domain/service"
	"usersvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// dummySecret is hashed once and verified against when a login names an
// unknown email, so a miss costs about as much as a wrong password.
const dummySecret = "Unused-Dummy-Secret-0"

// accountService implements the AccountUsecase interface.
type accountService struct {
	accountRepo  repository.AccountRepository
	hasher       service.CredentialHasher
	tokenService service.TokenService
	logger       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.CredentialHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &accountService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *accountService) Register(ctx context.Context, input usecase.RegisterInput) (*entity.Account, error) {
	email := strings.TrimSpace(input.Email)
	if !entity.ValidEmail(email) {
		return nil, domainerrors.ErrInvalidEmail
	}

	hash, err := srv.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash credential")
	}

	account, err := srv.accountRepo.Insert(ctx, email, hash, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert account")
	}

	srv.log(ctx).Info("Account registered", slog.String("accountID", account.ID.String()))

	return account, nil
}

// Authenticate looks the account up, always runs one verification, and only
// then inspects the outcome, so every failure path costs comparable time and
// returns the same error.
func (srv *accountService) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*entity.Account, error) {
	email := strings.TrimSpace(input.Email)

	var account *entity.Account
	if entity.ValidEmail(email) {
		found, err := srv.accountRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			account = found
		case errors.Is(err, domainerrors.ErrAccountNotFound):
		default:
			return nil, errors.Wrap(err, "failed to find account")
		}
	}

	if account == nil {
		_, _ = srv.hasher.Verify(ctx, input.Password, srv.dummyCredential(ctx))
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		return nil, domainerrors.ErrAuthFailed
	}

	ok, err := srv.hasher.Verify(ctx, input.Password, account.CredentialHash)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.WithStack(err)
		}
		srv.log(ctx).Error("Stored credential could not be verified",
			slog.String("accountID", account.ID.String()),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrAuthFailed
	}
	if !ok || !account.IsActive() {
		return nil, domainerrors.ErrAuthFailed
	}

	if srv.hasher.NeedsRehash(account.CredentialHash) {
		account = srv.upgradeCredential(ctx, account, input.Password)
	}

	return account, nil
}

// upgradeCredential replaces an outdated verifier after a successful login.
// Failures are logged and the login still succeeds.
func (srv *accountService) upgradeCredential(ctx context.Context, account *entity.Account, plaintext string) *entity.Account {
	hash, err := srv.hasher.Hash(ctx, plaintext)
	if err != nil {
		srv.log(ctx).Warn("Skipping credential upgrade", slog.String("accountID", account.ID.String()), slog.Any("error", err))

		return account
	}

	updated, err := srv.accountRepo.Update(ctx, account.ID, entity.AccountChanges{CredentialHash: &hash})
	if err != nil {
		srv.log(ctx).Warn("Failed to store upgraded credential", slog.String("accountID", account.ID.String()), slog.Any("error", err))

		return account
	}

	srv.log(ctx).Info("Credential upgraded", slog.String("accountID", account.ID.String()))

	return updated
}

func (srv *accountService) dummyCredential(ctx context.Context) string {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(context.WithoutCancel(ctx), dummySecret)
		if err != nil {
			srv.log(ctx).Warn("Failed to prepare dummy credential", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	return srv.dummyHash
}

func (srv *accountService) Login(ctx context.Context, input usecase.AuthenticateInput) (*usecase.LoginOutput, error) {
	account, err := srv.Authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := srv.tokenService.GenerateAccessToken(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	srv.log(ctx).Info("Account logged in", slog.String("accountID", account.ID.String()))

	return &usecase.LoginOutput{
		Account:     account,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ChangeCredential verifies the current secret before storing a new one.
// A deactivated account fails verification like any other mismatch, including
// one deactivated between the check and the write.
func (srv *accountService) ChangeCredential(ctx context.Context, id uuid.UUID, input usecase.ChangeCredentialInput) (*entity.Account, error) {
	// A weak replacement is rejected before paying for verification.
	if err := srv.hasher.ValidateSecret(input.NewPassword); err != nil {
		return nil, err
	}

	account, err := srv.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return nil, domainerrors.ErrAuthFailed
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	ok, err := srv.hasher.Verify(ctx, input.OldPassword, account.CredentialHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify current credential")
	}
	if !ok || !account.IsActive() {
		return nil, domainerrors.ErrAuthFailed
	}

	hash, err := srv.hasher.Hash(ctx, input.NewPassword)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash credential")
	}

	updated, err := srv.accountRepo.Update(ctx, id, entity.AccountChanges{CredentialHash: &hash})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountDeactivated) {
			return nil, domainerrors.ErrAuthFailed
		}

		return nil, errors.Wrap(err, "failed to store credential")
	}

	srv.log(ctx).Info("Credential changed", slog.String("accountID", id.String()))

	return updated, nil
}

func (srv *accountService) UpdateEmail(ctx context.Context, id uuid.UUID, newEmail string) (*entity.Account, error) {
	email := strings.TrimSpace(newEmail)
	if !entity.ValidEmail(email) {
		return nil, domainerrors.ErrInvalidEmail
	}

	return srv.update(ctx, id, entity.AccountChanges{Email: &email})
}

func (srv *accountService) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*entity.Account, error) {
	name = strings.TrimSpace(name)

	return srv.update(ctx, id, entity.AccountChanges{Name: &name})
}

// update relies on the store refusing deactivated rows, so there is no window
// between a status check and the write.
func (srv *accountService) update(ctx context.Context, id uuid.UUID, changes entity.AccountChanges) (*entity.Account, error) {
	updated, err := srv.accountRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update account")
	}

	srv.log(ctx).Info("Account updated",
		slog.String("accountID", id.String()),
		slog.Bool("email", changes.Email != nil),
		slog.Bool("name", changes.Name != nil),
	)

	return updated, nil
}

func (srv *accountService) Deactivate(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := srv.accountRepo.Deactivate(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deactivate account")
	}

	srv.log(ctx).Info("Account deactivated", slog.String("accountID", id.String()))

	return account, nil
}

func (srv *accountService) Get(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	return account, nil
}

func (srv *accountService) List(ctx context.Context, filter entity.ListFilter) (*usecase.ListOutput, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown status " + string(filter.Status))
	}
	filter = filter.Normalize()

	accounts, total, err := srv.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	return &usecase.ListOutput{
		Accounts: accounts,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

func (srv *accountService) Fields() []entity.FieldDescriptor {
	return entity.AccountFields()
}
