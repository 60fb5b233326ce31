package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/meatline/meatline/internal/database"
	"github.com/meatline/meatline/internal/entity"
)

var repoTracer = otel.Tracer("github.com/meatline/meatline/repository/account")

// ErrNotFound is returned when no matching account exists.
var ErrNotFound = errors.New("account not found")

// Repository provides access to login accounts.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// FindActiveByUsername returns the active account with the given username.
// Inactive accounts are indistinguishable from missing ones, so a
// deactivated user cannot probe for their own record.
func (r *Repository) FindActiveByUsername(ctx context.Context, username string) (*entity.Account, error) {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.FindActiveByUsername")
	defer span.End()

	account := new(entity.Account)
	err := r.reader.NewSelect().Model(account).
		Where("username = ?", username).
		Where("is_active = TRUE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return account, nil
}

// GetByID fetches an account by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.GetByID", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer span.End()

	account := new(entity.Account)
	err := r.reader.NewSelect().Model(account).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return account, nil
}

// List returns all accounts ordered by username.
func (r *Repository) List(ctx context.Context) ([]*entity.Account, error) {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.List")
	defer span.End()

	var accounts []*entity.Account
	if err := r.reader.NewSelect().Model(&accounts).Order("username").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return accounts, nil
}

// Create persists a new account.
func (r *Repository) Create(ctx context.Context, account *entity.Account) error {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.Create")
	defer span.End()

	_, err := r.writer.NewInsert().Model(account).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// Update rewrites an account's mutable fields. An empty PasswordHash keeps
// the stored one.
func (r *Repository) Update(ctx context.Context, account *entity.Account) error {
	ctx, span := repoTracer.Start(ctx, "AccountRepository.Update", trace.WithAttributes(attribute.Int64("account.id", account.ID)))
	defer span.End()

	columns := []string{"username", "role", "is_active", "updated_at"}
	if account.PasswordHash != "" {
		columns = append(columns, "password_hash")
	}

	res, err := r.writer.NewUpdate().Model(account).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
