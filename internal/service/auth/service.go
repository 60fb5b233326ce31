package auth

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/entity"
	repo "github.com/meatline/meatline/internal/repository/account"
	"github.com/meatline/meatline/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/meatline/meatline/service/auth")

// ErrInvalidCredentials is the cause attached when a login fails validation.
// The caller sees the same error for a wrong password, an unknown username,
// and a deactivated account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNoSession is the cause attached when no live session backs a token.
// Expiry is silent: it means "log in again", never a fault.
var ErrNoSession = errors.New("no active session")

// AccountSource is the slice of the credential store the service needs:
// the login lookup plus the admin-panel management operations.
type AccountSource interface {
	FindActiveByUsername(ctx context.Context, username string) (*entity.Account, error)
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	Create(ctx context.Context, account *entity.Account) error
	Update(ctx context.Context, account *entity.Account) error
}

// Service implements login, logout, and session restoration.
type Service struct {
	accounts AccountSource
	sessions auth.Store
	secret   []byte
	ttl      time.Duration
	cost     int
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Accounts AccountSource
	Sessions auth.Store
	Config   config.Config
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		accounts: p.Accounts,
		sessions: p.Sessions,
		secret:   []byte(p.Config.Auth.JWTSecret),
		ttl:      p.Config.Auth.SessionTTL,
		cost:     p.Config.Auth.BcryptCost,
		logger:   p.Logger,
	}
}

// Login validates the supplied credentials and, on success, persists a fresh
// session and returns it together with its bearer token. Nothing is
// persisted on failure.
func (s *Service) Login(ctx context.Context, username, password string) (*auth.Session, string, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if username == "" || password == "" {
		return nil, "", errorbank.BadRequest("username and password are required")
	}

	account, err := s.accounts.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", errorbank.Unauthorized("invalid credentials", errorbank.WithCause(ErrInvalidCredentials))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, "", errorbank.Internal("failed to check credentials", errorbank.WithCause(err))
	}

	if !auth.CheckPassword(account.PasswordHash, password) {
		return nil, "", errorbank.Unauthorized("invalid credentials", errorbank.WithCause(ErrInvalidCredentials))
	}

	session := auth.NewSession(account.Username, account.Role)
	if err := s.sessions.Save(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session store error")
		return nil, "", errorbank.Internal("failed to persist session", errorbank.WithCause(err))
	}

	token, err := auth.IssueToken(s.secret, session, s.ttl)
	if err != nil {
		_ = s.sessions.Clear(ctx, session.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "token error")
		return nil, "", errorbank.Internal("failed to issue token", errorbank.WithCause(err))
	}

	if s.logger != nil {
		s.logger.Info("login succeeded",
			zap.String("username", account.Username),
			zap.String("role", account.Role.String()),
		)
	}
	return session, token, nil
}

// Logout destroys the session behind the token. It succeeds unconditionally:
// a missing or already-expired session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Clear(ctx, claims.SessionID); err != nil {
		if s.logger != nil {
			s.logger.Warn("session clear failed", zap.Error(err))
		}
	}
	return nil
}

// Restore resolves a bearer token to its live session. Expired or missing
// sessions are reported as ErrNoSession after clearing any stale record.
func (s *Service) Restore(ctx context.Context, token string) (*auth.Session, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Restore")
	defer span.End()

	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return nil, errorbank.Unauthorized("session expired or missing", errorbank.WithCause(ErrNoSession))
	}

	session, err := s.sessions.Load(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, errorbank.Unauthorized("session expired or missing", errorbank.WithCause(ErrNoSession))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "session store error")
		return nil, errorbank.Internal("failed to load session", errorbank.WithCause(err))
	}

	if session.Expired(time.Now().UTC(), s.ttl) {
		_ = s.sessions.Clear(ctx, session.ID)
		return nil, errorbank.Unauthorized("session expired or missing", errorbank.WithCause(ErrNoSession))
	}
	return session, nil
}

// Authorize reports whether the session admits a view gated by required.
func (s *Service) Authorize(session *auth.Session, required auth.Role) bool {
	return auth.Authorize(session, required)
}
