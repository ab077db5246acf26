// Package handler contains the HTTP handlers for the API.
package handler

import (
	"net/http"

	"usersvc/internal/delivery/api/middleware"
	"usersvc/internal/delivery/api/response"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/infra/metrics"
	"usersvc/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
}

// AccountHandler serves the self-service account routes.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{accountUC: params.AccountUC}
}

// UpdateEmailRequest represents the request body for changing the login email
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,max=320"`
}

// UpdateProfileRequest represents the request body for profile edits
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// bindAndValidate decodes the body into req and applies its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

// Register handles POST /v1/accounts
func (h *AccountHandler) Register(c echo.Context) error {
	var req usecase.RegisterInput
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	account, err := h.accountUC.Register(c.Request().Context(), req)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	metrics.RecordAccountEvent("registered")

	return response.Success(c, http.StatusCreated, account)
}

// Login handles POST /v1/auth/login
func (h *AccountHandler) Login(c echo.Context) error {
	var req usecase.AuthenticateInput
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	output, err := h.accountUC.Login(c.Request().Context(), req)
	metrics.RecordAuthAttempt("login", err == nil)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, output)
}

// Me handles GET /v1/accounts/me
func (h *AccountHandler) Me(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrUnauthorized)
	}

	account, err := h.accountUC.Get(c.Request().Context(), accountID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, account)
}

// UpdateEmail handles PUT /v1/accounts/me/email
func (h *AccountHandler) UpdateEmail(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrUnauthorized)
	}

	var req UpdateEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	account, err := h.accountUC.UpdateEmail(c.Request().Context(), accountID, req.Email)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, account)
}

// ChangeCredential handles PUT /v1/accounts/me/credential
func (h *AccountHandler) ChangeCredential(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrUnauthorized)
	}

	var req usecase.ChangeCredentialInput
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	account, err := h.accountUC.ChangeCredential(c.Request().Context(), accountID, req)
	metrics.RecordAuthAttempt("change_credential", err == nil)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, account)
}

// UpdateProfile handles PATCH /v1/accounts/me
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrUnauthorized)
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	account, err := h.accountUC.UpdateProfile(c.Request().Context(), accountID, req.Name)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, account)
}

// Deactivate handles POST /v1/accounts/me/deactivate
func (h *AccountHandler) Deactivate(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrUnauthorized)
	}

	account, err := h.accountUC.Deactivate(c.Request().Context(), accountID)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	metrics.RecordAccountEvent("deactivated")

	return response.Success(c, http.StatusOK, account)
}
