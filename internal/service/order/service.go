package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/cache"
	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	"github.com/meatline/meatline/internal/lifecycle"
	"github.com/meatline/meatline/internal/messaging"
	"github.com/meatline/meatline/internal/notify"
	repo "github.com/meatline/meatline/internal/repository/order"
	"github.com/meatline/meatline/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/meatline/meatline/service/order")

// Store is the slice of the order repository the service depends on.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context, filter repo.ListFilter) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to lifecycle.Status, updatedAt time.Time) error
	Update(ctx context.Context, order *entity.Order) error
}

// Service encapsulates business logic around orders: creation, the status
// lifecycle, edit locking, and change notification.
type Service struct {
	store     Store
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	hub       *notify.Hub
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
	Hub       *notify.Hub
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Store,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		hub:       p.Hub,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create submits a new order on behalf of a field agent. Orders always start
// in the new status with a freshly generated order number.
func (s *Service) Create(ctx context.Context, req dto.CreateOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int64("customer.id", req.CustomerID)))
	defer span.End()

	if err := validateOrderPayload(req.CustomerID, req.DeliveryDate, req.Items); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &entity.Order{
		Number:       GenerateNumber(),
		CustomerID:   req.CustomerID,
		Status:       lifecycle.StatusNew,
		DeliveryDate: req.DeliveryDate,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items:        itemsFromRequest(req.Items),
	}

	if err := s.store.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
		}
	}

	s.publishChange(ctx, notify.EventInsert, order)
	return order, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter repo.ListFilter) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.store.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// UpdateStatus advances an order along the fulfillment lifecycle. The
// decision is made against the latest persisted status, and the persistence
// layer re-checks it so a concurrent transition loses cleanly instead of
// being overwritten.
func (s *Service) UpdateStatus(ctx context.Context, id int64, target lifecycle.Status) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.target_status", target.String()),
	))
	defer span.End()

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	next, err := lifecycle.Apply(order.Status, target)
	if err != nil {
		return nil, errorbank.Conflict(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target),
			errorbank.WithCause(err),
			errorbank.WithDetail("legal_targets", lifecycle.Targets(order.Status)),
		)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateStatus(ctx, id, order.Status, next, now); err != nil {
		if errors.Is(err, repo.ErrStatusChanged) {
			return nil, errorbank.Conflict("order status changed concurrently", errorbank.WithCause(err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order status", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, id)
	order.Status = next
	order.UpdatedAt = now

	if s.logger != nil {
		s.logger.Info("order status updated",
			zap.Int64("id", order.ID),
			zap.String("number", order.Number),
			zap.String("status", next.String()),
		)
	}
	s.publishChange(ctx, notify.EventUpdate, order)
	return order, nil
}

// Update edits an order's customer, delivery date, notes, and item lines.
// Only orders still in the new status are editable; this is the single edit
// gate for every caller.
func (s *Service) Update(ctx context.Context, id int64, req dto.UpdateOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if !lifecycle.CanEdit(order.Status) {
		return nil, errorbank.Conflict(
			fmt.Sprintf("order %s is locked: status is %s", order.Number, order.Status),
			errorbank.WithCause(lifecycle.ErrOrderLocked),
		)
	}

	if err := validateOrderPayload(req.CustomerID, req.DeliveryDate, req.Items); err != nil {
		return nil, err
	}

	order.CustomerID = req.CustomerID
	order.DeliveryDate = req.DeliveryDate
	order.Notes = req.Notes
	order.UpdatedAt = time.Now().UTC()
	order.Items = itemsFromRequest(req.Items)

	if err := s.store.Update(ctx, order); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, id)
	s.publishChange(ctx, notify.EventUpdate, order)
	return order, nil
}

// GenerateNumber mints a human-readable order number.
func GenerateNumber() string {
	return fmt.Sprintf("ORD-%d-%03d", time.Now().UnixMilli(), rand.IntN(1000))
}

func validateOrderPayload(customerID int64, deliveryDate time.Time, items []dto.OrderItemRequest) error {
	if customerID <= 0 {
		return errorbank.BadRequest("customer is required")
	}
	if deliveryDate.IsZero() {
		return errorbank.BadRequest("delivery date is required")
	}
	if len(items) == 0 {
		return errorbank.Unprocessable("order must contain at least one item")
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return errorbank.BadRequest("item product is required")
		}
		if item.Quantity <= 0 {
			return errorbank.BadRequest("item quantity must be positive")
		}
	}
	return nil
}

func itemsFromRequest(items []dto.OrderItemRequest) []*entity.OrderItem {
	out := make([]*entity.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, &entity.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
			Notes:     item.Notes,
		})
	}
	return out
}

func (s *Service) publishChange(ctx context.Context, eventType notify.EventType, order *entity.Order) {
	event := notify.Event{
		Type:  eventType,
		Order: ToResponse(order),
		At:    time.Now().UTC(),
	}

	if s.hub != nil {
		s.hub.Publish(event)
	}

	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order event", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order event", zap.Error(err))
		}
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache invalidation failed", zap.Int64("id", id), zap.Error(err))
		}
	}
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

// ToResponse maps an order entity onto its transport representation,
// including the legal next statuses and the edit flag derived from the
// lifecycle.
func ToResponse(order *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:           order.ID,
		Number:       order.Number,
		CustomerID:   order.CustomerID,
		Status:       order.Status.String(),
		Editable:     lifecycle.CanEdit(order.Status),
		DeliveryDate: order.DeliveryDate,
		Notes:        order.Notes,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	for _, target := range lifecycle.Targets(order.Status) {
		resp.StatusTargets = append(resp.StatusTargets, target.String())
	}
	if order.Customer != nil {
		resp.Customer = &dto.CustomerResponse{
			ID:            order.Customer.ID,
			Name:          order.Customer.Name,
			Code:          order.Customer.Code,
			Phone:         order.Customer.Phone,
			Address:       order.Customer.Address,
			ContactPerson: order.Customer.ContactPerson,
		}
	}
	for _, item := range order.Items {
		line := dto.OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
			Notes:     item.Notes,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.Category = item.Product.Category
			line.Unit = item.Product.Unit
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
