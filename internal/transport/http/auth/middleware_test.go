package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	coreauth "github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/entity"
	repo "github.com/meatline/meatline/internal/repository/account"
	service "github.com/meatline/meatline/internal/service/auth"
)

type fakeAccounts struct {
	byUsername map[string]*entity.Account
}

func (f *fakeAccounts) FindActiveByUsername(_ context.Context, username string) (*entity.Account, error) {
	account, ok := f.byUsername[username]
	if !ok || !account.IsActive {
		return nil, repo.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccounts) GetByID(context.Context, int64) (*entity.Account, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeAccounts) List(context.Context) ([]*entity.Account, error) { return nil, nil }

func (f *fakeAccounts) Create(context.Context, *entity.Account) error { return nil }

func (f *fakeAccounts) Update(context.Context, *entity.Account) error { return nil }

func newTestStack(t *testing.T) *echo.Echo {
	t.Helper()

	hash, err := coreauth.HashPassword("secret", 4)
	require.NoError(t, err)

	accounts := &fakeAccounts{byUsername: map[string]*entity.Account{
		"agent": {ID: 1, Username: "agent", PasswordHash: hash, Role: coreauth.RoleFieldAgent, IsActive: true},
		"root":  {ID: 2, Username: "root", PasswordHash: hash, Role: coreauth.RoleAdmin, IsActive: true},
	}}

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.BcryptCost = 4

	svc := service.NewService(service.Params{
		Accounts: accounts,
		Sessions: coreauth.NewMemoryStore(cfg.Auth.SessionTTL),
		Config:   cfg,
		Logger:   zap.NewNop(),
	})

	e := echo.New()
	gate := NewGate(svc)
	Register(e, NewHandler(svc), gate)

	e.GET("/probe", func(c echo.Context) error {
		session := SessionFrom(c)
		return c.String(http.StatusOK, session.Username)
	}, gate.Require())
	e.GET("/restricted", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, gate.RequireRole(coreauth.RoleAdmin))

	return e
}

func login(t *testing.T, e *echo.Echo, username, password string) (string, int) {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return "", rec.Code
	}

	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Data.Token)
	return payload.Data.Token, rec.Code
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGateRejectsMissingToken(t *testing.T) {
	e := newTestStack(t)

	rec := get(e, "/probe", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateRejectsGarbageToken(t *testing.T) {
	e := newTestStack(t)

	rec := get(e, "/probe", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateAdmitsLiveSession(t *testing.T) {
	e := newTestStack(t)

	token, code := login(t, e, "agent", "secret")
	require.Equal(t, http.StatusOK, code)

	rec := get(e, "/probe", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "agent", rec.Body.String())
}

func TestGateEnforcesRole(t *testing.T) {
	e := newTestStack(t)

	agentToken, _ := login(t, e, "agent", "secret")
	rec := get(e, "/restricted", agentToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, _ := login(t, e, "root", "secret")
	rec = get(e, "/restricted", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newTestStack(t)

	_, code := login(t, e, "agent", "wrong")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestSessionEndpointDescribesCaller(t *testing.T) {
	e := newTestStack(t)

	token, _ := login(t, e, "root", "secret")
	rec := get(e, "/auth/session", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			Username string `json:"username"`
			Role     string `json:"role"`
			Token    string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "root", payload.Data.Username)
	require.Equal(t, "admin", payload.Data.Role)
	require.Empty(t, payload.Data.Token)
}

func TestLogoutEndsSession(t *testing.T) {
	e := newTestStack(t)

	token, _ := login(t, e, "agent", "secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = get(e, "/auth/session", token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
