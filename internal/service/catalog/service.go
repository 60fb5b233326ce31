package catalog

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	repo "github.com/meatline/meatline/internal/repository/catalog"
	"github.com/meatline/meatline/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/meatline/meatline/service/catalog")

// Store is the slice of the catalog repository the service depends on.
type Store interface {
	ListCustomers(ctx context.Context) ([]*entity.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*entity.Customer, error)
	CreateCustomer(ctx context.Context, customer *entity.Customer) error
	UpdateCustomer(ctx context.Context, customer *entity.Customer) error
	ListProducts(ctx context.Context, activeOnly bool) ([]*entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) error
	UpdateProduct(ctx context.Context, product *entity.Product) error
}

// Service manages the customer and product catalog field agents order from.
type Service struct {
	store  Store
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  Store
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{store: p.Store, logger: p.Logger}
}

// ListCustomers returns every customer ordered by name.
func (s *Service) ListCustomers(ctx context.Context) ([]*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListCustomers")
	defer span.End()

	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list customers", errorbank.WithCause(err))
	}
	return customers, nil
}

// CreateCustomer adds a customer to the catalog.
func (s *Service) CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateCustomer")
	defer span.End()

	if req.Name == "" {
		return nil, errorbank.BadRequest("customer name is required")
	}

	customer := &entity.Customer{
		Name:          req.Name,
		Code:          req.Code,
		Phone:         req.Phone,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// UpdateCustomer rewrites a customer's contact fields.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, req dto.CustomerRequest) (*entity.Customer, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	if req.Name == "" {
		return nil, errorbank.BadRequest("customer name is required")
	}

	customer := &entity.Customer{
		ID:            id,
		Name:          req.Name,
		Code:          req.Code,
		Phone:         req.Phone,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
	}
	if err := s.store.UpdateCustomer(ctx, customer); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("customer not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// ListProducts returns catalog products, optionally including deactivated
// ones (the admin view needs those, the order form does not).
func (s *Service) ListProducts(ctx context.Context, includeInactive bool) ([]*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.store.ListProducts(ctx, !includeInactive)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	return products, nil
}

// CreateProduct adds a product to the catalog, active by default.
func (s *Service) CreateProduct(ctx context.Context, req dto.ProductRequest) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if req.Name == "" || req.Category == "" {
		return nil, errorbank.BadRequest("product name and category are required")
	}

	product := &entity.Product{
		Name:      req.Name,
		Category:  req.Category,
		Unit:      req.Unit,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}
	return product, nil
}

// UpdateProduct rewrites a product's catalog fields. Clearing is_active
// retires the product from new orders without touching order history.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req dto.ProductRequest) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Category != "" {
		existing.Category = req.Category
	}
	if req.Unit != "" {
		existing.Unit = req.Unit
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.store.UpdateProduct(ctx, existing); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}
	return existing, nil
}
