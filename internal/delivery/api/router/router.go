// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"usersvc/internal/delivery/api/middleware"
	"usersvc/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	AdminHandler   *handler.AdminHandler
	HealthHandler  *handler.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	adminHandler   *handler.AdminHandler
	healthHandler  *handler.HealthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		adminHandler:   params.AdminHandler,
		healthHandler:  params.HealthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.Health)
	e.GET("/ready", r.healthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.POST("/accounts", r.accountHandler.Register)
	v1.POST("/auth/login", r.accountHandler.Login)

	// Self-service routes act on the account named by the access token
	meGroup := v1.Group("/accounts/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.accountHandler.Me)
		meGroup.PATCH("", r.accountHandler.UpdateProfile)
		meGroup.PUT("/email", r.accountHandler.UpdateEmail)
		meGroup.PUT("/credential", r.accountHandler.ChangeCredential)
		meGroup.POST("/deactivate", r.accountHandler.Deactivate)
	}

	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.RequireAdmin)
	{
		adminGroup.GET("/schema", r.adminHandler.Schema)
		adminGroup.GET("/accounts", r.adminHandler.ListAccounts)
		adminGroup.GET("/accounts/:id", r.adminHandler.GetAccount)
		adminGroup.POST("/accounts/:id/deactivate", r.adminHandler.DeactivateAccount)
	}
}
