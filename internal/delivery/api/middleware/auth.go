package middleware

import (
	"crypto/subtle"
	"strings"

	"usersvc/config"
	"usersvc/internal/delivery/api/response"
	deliverycontext "usersvc/internal/delivery/context"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// HeaderAdminToken carries the shared admin secret.
const HeaderAdminToken = "X-Admin-Token"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	Config       *config.Config
}

// AuthMiddleware provides bearer token authentication and the admin guard.
type AuthMiddleware struct {
	tokenSvc   service.TokenService
	adminToken []byte
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc:   params.TokenService,
		adminToken: []byte(params.Config.SecretKey.Admin),
	}
}

// Authenticate validates the access token and stores the account id.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		ctx := deliverycontext.WithAccountID(c.Request().Context(), claims.AccountID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireAdmin compares the X-Admin-Token header with the configured secret
// in constant time. With no secret configured the admin surface is closed.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(m.adminToken) == 0 {
			return response.Forbidden(c, "ADMIN_DISABLED", "Admin access is not configured")
		}

		provided := []byte(c.Request().Header.Get(HeaderAdminToken))
		if subtle.ConstantTimeCompare(provided, m.adminToken) != 1 {
			return response.HandleAppError(c, domainerrors.ErrForbidden)
		}

		return next(c)
	}
}

// GetAccountID returns the account id Authenticate put on the request context.
func GetAccountID(c echo.Context) (uuid.UUID, bool) {
	return deliverycontext.GetAccountID(c.Request().Context())
}
