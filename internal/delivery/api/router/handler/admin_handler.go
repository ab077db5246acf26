package handler

import (
	"net/http"
	"strconv"

	"usersvc/internal/delivery/api/response"
	"usersvc/internal/domain/entity"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/infra/metrics"
	"usersvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
}

// AdminHandler serves /admin/*. The router guards it with the admin token.
type AdminHandler struct {
	accountUC usecase.AccountUsecase
}

// NewAdminHandler is the constructor for AdminHandler
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{accountUC: params.AccountUC}
}

// Schema handles GET /admin/schema
func (h *AdminHandler) Schema(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"entity": "account",
		"fields": h.accountUC.Fields(),
	})
}

// ListAccounts handles GET /admin/accounts?status=&limit=&offset=
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	filter := entity.ListFilter{Status: entity.AccountStatus(c.QueryParam("status"))}

	var err error
	if filter.Limit, err = intQueryParam(c, "limit"); err != nil {
		return response.HandleAppError(c, err)
	}
	if filter.Offset, err = intQueryParam(c, "offset"); err != nil {
		return response.HandleAppError(c, err)
	}

	output, err := h.accountUC.List(c.Request().Context(), filter)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, output)
}

// GetAccount handles GET /admin/accounts/:id
func (h *AdminHandler) GetAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid account ID")
	}

	account, err := h.accountUC.Get(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, account)
}

// DeactivateAccount handles POST /admin/accounts/:id/deactivate
func (h *AdminHandler) DeactivateAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid account ID")
	}

	account, err := h.accountUC.Deactivate(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	metrics.RecordAccountEvent("deactivated_by_admin")

	return response.Success(c, http.StatusOK, account)
}

func intQueryParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails(name + " must be a non-negative integer")
	}

	return v, nil
}
