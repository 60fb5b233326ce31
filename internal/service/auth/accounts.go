package auth

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	repo "github.com/meatline/meatline/internal/repository/account"
	"github.com/meatline/meatline/pkg/errorbank"
)

// ListAccounts returns every login account for the admin panel.
func (s *Service) ListAccounts(ctx context.Context) ([]*entity.Account, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.ListAccounts")
	defer span.End()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list accounts", errorbank.WithCause(err))
	}
	return accounts, nil
}

// CreateAccount registers a new login with a freshly hashed password.
func (s *Service) CreateAccount(ctx context.Context, req dto.AccountRequest) (*entity.Account, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.CreateAccount")
	defer span.End()

	if req.Username == "" || req.Password == "" {
		return nil, errorbank.BadRequest("username and password are required")
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, errorbank.BadRequest("invalid role", errorbank.WithCause(err))
	}

	hash, err := auth.HashPassword(req.Password, s.cost)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	account := &entity.Account{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create account", errorbank.WithCause(err))
	}
	return account, nil
}

// UpdateAccount changes an account's role, active flag, and optionally its
// password. An empty password keeps the stored hash.
func (s *Service) UpdateAccount(ctx context.Context, id int64, req dto.AccountRequest) (*entity.Account, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.UpdateAccount", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer span.End()

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("account not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load account", errorbank.WithCause(err))
	}

	if req.Username != "" {
		account.Username = req.Username
	}
	if req.Role != "" {
		role, err := auth.ParseRole(req.Role)
		if err != nil {
			return nil, errorbank.BadRequest("invalid role", errorbank.WithCause(err))
		}
		account.Role = role
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	account.PasswordHash = ""
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, s.cost)
		if err != nil {
			span.RecordError(err)
			return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
		}
		account.PasswordHash = hash
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("account not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update account", errorbank.WithCause(err))
	}
	return account, nil
}

// DeactivateAccount retires a login without deleting its history.
func (s *Service) DeactivateAccount(ctx context.Context, id int64) error {
	inactive := false
	_, err := s.UpdateAccount(ctx, id, dto.AccountRequest{IsActive: &inactive})
	return err
}
