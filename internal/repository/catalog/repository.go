package catalog

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

var repoTracer = otel.Tracer("github.com/meatline/meatline/repository/catalog")

// ErrNotFound is returned when a customer or product is missing.
var ErrNotFound = errors.New("catalog record not found")

// Repository provides access to the customer and product catalog.
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

// ListCustomers returns all customers ordered by name.
func (r *Repository) ListCustomers(ctx context.Context) ([]*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListCustomers")
	defer span.End()

	var customers []*entity.Customer
	if err := r.reader.NewSelect().Model(&customers).Order("name").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return customers, nil
}

// GetCustomer fetches a single customer by id.
func (r *Repository) GetCustomer(ctx context.Context, id int64) (*entity.Customer, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	customer := new(entity.Customer)
	err := r.reader.NewSelect().Model(customer).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return customer, nil
}

// CreateCustomer persists a new customer.
func (r *Repository) CreateCustomer(ctx context.Context, customer *entity.Customer) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateCustomer", trace.WithAttributes(attribute.String("customer.name", customer.Name)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(customer).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateCustomer rewrites a customer's contact fields.
func (r *Repository) UpdateCustomer(ctx context.Context, customer *entity.Customer) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateCustomer", trace.WithAttributes(attribute.Int64("customer.id", customer.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(customer).
		Column("name", "code", "phone", "address", "contact_person").
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

// ListProducts returns products ordered by category then name. When
// activeOnly is set, deactivated products are excluded.
func (r *Repository) ListProducts(ctx context.Context, activeOnly bool) ([]*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListProducts", trace.WithAttributes(attribute.Bool("active_only", activeOnly)))
	defer span.End()

	var products []*entity.Product
	query := r.reader.NewSelect().Model(&products).Order("category", "name")
	if activeOnly {
		query = query.Where("is_active = TRUE")
	}
	if err := query.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// CreateProduct persists a new product.
func (r *Repository) CreateProduct(ctx context.Context, product *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateProduct", trace.WithAttributes(attribute.String("product.name", product.Name)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(product).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateProduct rewrites a product's catalog fields and active flag.
func (r *Repository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", product.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(product).
		Column("name", "category", "unit", "is_active").
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
