package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	coreauth "github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	repo "github.com/meatline/meatline/internal/repository/account"
	"github.com/meatline/meatline/pkg/errorbank"
)

type fakeAccounts struct {
	nextID   int64
	accounts map[string]*entity.Account
}

func (f *fakeAccounts) FindActiveByUsername(_ context.Context, username string) (*entity.Account, error) {
	account, ok := f.accounts[username]
	if !ok || !account.IsActive {
		return nil, repo.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*entity.Account, error) {
	for _, account := range f.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAccounts) List(_ context.Context) ([]*entity.Account, error) {
	var out []*entity.Account
	for _, account := range f.accounts {
		out = append(out, account)
	}
	return out, nil
}

func (f *fakeAccounts) Create(_ context.Context, account *entity.Account) error {
	f.nextID++
	account.ID = f.nextID + 100
	f.accounts[account.Username] = account
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, account *entity.Account) error {
	for username, existing := range f.accounts {
		if existing.ID == account.ID {
			if account.PasswordHash == "" {
				account.PasswordHash = existing.PasswordHash
			}
			delete(f.accounts, username)
			f.accounts[account.Username] = account
			return nil
		}
	}
	return repo.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *coreauth.MemoryStore) {
	t.Helper()

	hash := func(plain string) string {
		h, err := coreauth.HashPassword(plain, 4)
		require.NoError(t, err)
		return h
	}

	accounts := &fakeAccounts{accounts: map[string]*entity.Account{
		"agent7": {
			ID: 1, Username: "agent7", Role: coreauth.RoleFieldAgent,
			PasswordHash: hash("field-secret"), IsActive: true,
		},
		"storekeeper": {
			ID: 2, Username: "storekeeper", Role: coreauth.RoleWarehouse,
			PasswordHash: hash("warehouse-secret"), IsActive: true,
		},
		"retired": {
			ID: 3, Username: "retired", Role: coreauth.RoleFieldAgent,
			PasswordHash: hash("whatever"), IsActive: false,
		},
	}}

	sessions := coreauth.NewMemoryStore(coreauth.DefaultSessionTTL)
	cfg := config.Config{Auth: config.Auth{
		JWTSecret:  "test-secret",
		SessionTTL: coreauth.DefaultSessionTTL,
	}}

	svc := NewService(Params{
		Accounts: accounts,
		Sessions: sessions,
		Config:   cfg,
		Logger:   zap.NewNop(),
	})
	return svc, sessions
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)

	session, token, err := svc.Login(ctx, "storekeeper", "warehouse-secret")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotEmpty(t, token)
	assert.Equal(t, coreauth.RoleWarehouse, session.Role)

	stored, err := sessions.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, coreauth.RoleWarehouse, stored.Role)

	// A warehouse session does not open field-agent views.
	assert.False(t, svc.Authorize(session, coreauth.RoleFieldAgent))
	assert.True(t, svc.Authorize(session, coreauth.RoleWarehouse))
	assert.True(t, svc.Authorize(session, ""))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, sessions := newTestService(t)

	session, token, err := svc.Login(context.Background(), "agent7", "not-the-secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
	assert.Nil(t, session)
	assert.Empty(t, token)

	// Nothing persisted on failure.
	_, err = sessions.Load(context.Background(), "any")
	assert.ErrorIs(t, err, coreauth.ErrSessionNotFound)
}

func TestLoginUnknownOrInactiveAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "pw")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = svc.Login(context.Background(), "retired", "whatever")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLoginMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "", "pw")
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	session, token, err := svc.Login(ctx, "agent7", "field-secret")
	require.NoError(t, err)

	restored, err := svc.Restore(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, restored.ID)
	assert.Equal(t, coreauth.RoleFieldAgent, restored.Role)
}

func TestRestoreExpiredSessionIsAbsent(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)

	session, _, err := svc.Login(ctx, "agent7", "field-secret")
	require.NoError(t, err)

	// Backdate the persisted session past the TTL; the token itself would
	// also have expired, but the store check must hold on its own.
	session.IssuedAt = time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, sessions.Save(ctx, session))

	token, err := coreauth.IssueToken([]byte("test-secret"), &coreauth.Session{
		ID: session.ID, Username: session.Username, Role: session.Role,
		IssuedAt: time.Now().UTC(),
	}, coreauth.DefaultSessionTTL)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, token)
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestRestoreGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Restore(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestLogoutDestroysSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, token, err := svc.Login(ctx, "storekeeper", "warehouse-secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Restore(ctx, token)
	assert.True(t, errors.Is(err, ErrNoSession))

	// Logout never fails, even on garbage.
	assert.NoError(t, svc.Logout(ctx, "not-a-token"))
}

func TestCreateAccountHashesPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	account, err := svc.CreateAccount(ctx, dto.AccountRequest{
		Username: "newagent",
		Password: "plaintext",
		Role:     "field_agent",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "plaintext", account.PasswordHash)
	assert.True(t, account.IsActive)

	// The fresh account can log in.
	session, _, err := svc.Login(ctx, "newagent", "plaintext")
	require.NoError(t, err)
	assert.Equal(t, coreauth.RoleFieldAgent, session.Role)
}

func TestCreateAccountRejectsBadRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(context.Background(), dto.AccountRequest{
		Username: "x", Password: "y", Role: "driver",
	})
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestDeactivateAccountBlocksLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _, err := svc.Login(ctx, "agent7", "field-secret")
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateAccount(ctx, 1))

	_, _, err = svc.Login(ctx, "agent7", "field-secret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestUpdateAccountKeepsPasswordWhenEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.UpdateAccount(ctx, 2, dto.AccountRequest{Role: "admin"})
	require.NoError(t, err)

	// Same password still works, new role applies.
	session, _, err := svc.Login(ctx, "storekeeper", "warehouse-secret")
	require.NoError(t, err)
	assert.Equal(t, coreauth.RoleAdmin, session.Role)
}
