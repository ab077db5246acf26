package handler

import (
	"net/http"

	"usersvc/internal/delivery/api/response"
	"usersvc/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// HealthHandlerParams holds dependencies for HealthHandler, injected by Fx.
type HealthHandlerParams struct {
	fx.In

	Gate service.SchemaGate
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	gate service.SchemaGate
}

// NewHealthHandler is the constructor for HealthHandler
func NewHealthHandler(params HealthHandlerParams) *HealthHandler {
	return &HealthHandler{gate: params.Gate}
}

// Health reports that the process is up.
func (h *HealthHandler) Health(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports 503 until the schema is current.
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.gate.Ready(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "ready"})
}
