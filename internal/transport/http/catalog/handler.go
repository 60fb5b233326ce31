package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	coreauth "github.com/meatline/meatline/internal/auth"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	"github.com/meatline/meatline/internal/presentation/http/response"
	service "github.com/meatline/meatline/internal/service/catalog"
	authtransport "github.com/meatline/meatline/internal/transport/http/auth"
	"github.com/meatline/meatline/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/meatline/meatline/transport/http/catalog")

// Handler exposes customer and product catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Field agents may add
// customers they sign up on the road; product maintenance stays with admins.
func Register(e *echo.Echo, h *Handler, gate *authtransport.Gate) {
	customers := e.Group("/customers", gate.Require())
	customers.GET("", h.listCustomers)
	customers.POST("", h.createCustomer, gate.RequireRole(coreauth.RoleFieldAgent))
	customers.PUT("/:id", h.updateCustomer, gate.RequireRole(coreauth.RoleAdmin))

	products := e.Group("/products", gate.Require())
	products.GET("", h.listProducts)
	products.POST("", h.createProduct, gate.RequireRole(coreauth.RoleAdmin))
	products.PUT("/:id", h.updateProduct, gate.RequireRole(coreauth.RoleAdmin))
}

func (h *Handler) listCustomers(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listCustomers")
	defer span.End()

	customers, err := h.svc.ListCustomers(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, toCustomerDTO(customer))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) createCustomer(c echo.Context) error {
	b := response.New(c)

	var payload dto.CustomerRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.createCustomer")
	defer span.End()

	customer, err := h.svc.CreateCustomer(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toCustomerDTO(customer)).Build()
}

func (h *Handler) updateCustomer(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.CustomerRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.updateCustomer", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	customer, err := h.svc.UpdateCustomer(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toCustomerDTO(customer)).Build()
}

func (h *Handler) listProducts(c echo.Context) error {
	b := response.New(c)

	includeInactive := c.QueryParam("include_inactive") == "true"

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listProducts")
	defer span.End()

	products, err := h.svc.ListProducts(ctx, includeInactive)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, toProductDTO(product))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) createProduct(c echo.Context) error {
	b := response.New(c)

	var payload dto.ProductRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.createProduct")
	defer span.End()

	product, err := h.svc.CreateProduct(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toProductDTO(product)).Build()
}

func (h *Handler) updateProduct(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.ProductRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.updateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.UpdateProduct(ctx, id, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toProductDTO(product)).Build()
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func toCustomerDTO(customer *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:            customer.ID,
		Name:          customer.Name,
		Code:          customer.Code,
		Phone:         customer.Phone,
		Address:       customer.Address,
		ContactPerson: customer.ContactPerson,
	}
}

func toProductDTO(product *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:       product.ID,
		Name:     product.Name,
		Category: product.Category,
		Unit:     product.Unit,
		IsActive: product.IsActive,
	}
}
