package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"usersvc/config"
	"usersvc/internal/domain/service"
	"usersvc/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthMiddleware(t *testing.T, adminToken string) (*AuthMiddleware, service.TokenService) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Admin = adminToken

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return NewAuthMiddleware(AuthMiddlewareParams{TokenService: tokens, Config: cfg}), tokens
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Error.Code
}

func TestAuthenticate_PutsAccountIDOnRequestContext(t *testing.T) {
	m, tokens := newTestAuthMiddleware(t, "")
	accountID := uuid.New()
	token, _, err := tokens.GenerateAccessToken(accountID)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	err = m.Authenticate(func(c echo.Context) error {
		id, ok := GetAccountID(c)
		require.True(t, ok)
		seen = id

		return c.NoContent(http.StatusNoContent)
	})(c)
	require.NoError(t, err)
	assert.Equal(t, accountID, seen)
}

func TestGetAccountID_MissingWithoutAuthenticate(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := GetAccountID(c)
	assert.False(t, ok)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
		wantCode   string
	}{
		{"not configured", "", "anything", http.StatusForbidden, "ADMIN_DISABLED"},
		{"wrong token", "secret", "guess", http.StatusForbidden, "FORBIDDEN"},
		{"missing token", "secret", "", http.StatusForbidden, "FORBIDDEN"},
		{"matching token", "secret", "secret", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestAuthMiddleware(t, tt.configured)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.provided != "" {
				req.Header.Set(HeaderAdminToken, tt.provided)
			}
			rec := httptest.NewRecorder()

			err := m.RequireAdmin(func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			})(e.NewContext(req, rec))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			}
		})
	}
}
