package order

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/dto"
	"github.com/meatline/meatline/internal/entity"
	"github.com/meatline/meatline/internal/lifecycle"
	"github.com/meatline/meatline/internal/notify"
	repo "github.com/meatline/meatline/internal/repository/order"
	"github.com/meatline/meatline/pkg/errorbank"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*entity.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, orders: make(map[int64]*entity.Order)}
}

func (f *fakeStore) Create(_ context.Context, order *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = f.nextID
	f.nextID++
	for _, item := range order.Items {
		item.OrderID = order.ID
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) List(_ context.Context, filter repo.ListFilter) ([]*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Order
	for _, order := range f.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.CustomerID > 0 && order.CustomerID != filter.CustomerID {
			continue
		}
		copied := *order
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, from, to lifecycle.Status, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	if order.Status != from {
		return repo.ErrStatusChanged
	}
	order.Status = to
	order.UpdatedAt = updatedAt
	return nil
}

func (f *fakeStore) Update(_ context.Context, order *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[order.ID]
	if !ok {
		return repo.ErrNotFound
	}
	*stored = *order
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *notify.Hub) {
	t.Helper()
	store := newFakeStore()
	hub := notify.NewHub(zap.NewNop())
	svc := NewService(Params{
		Store:  store,
		Cache:  nil,
		Config: config.Config{},
		Logger: zap.NewNop(),
		Hub:    hub,
	})
	return svc, store, hub
}

func validCreateRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerID:   7,
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 1),
		Notes:        "morning delivery",
		Items: []dto.OrderItemRequest{
			{ProductID: 1, Quantity: 2, Weight: "1.5kg"},
			{ProductID: 3, Quantity: 1},
		},
	}
}

func TestCreateStartsInNewStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusNew, order.Status)
	assert.Len(t, order.Items, 2)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-\d{3}$`), order.Number)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validCreateRequest()
	req.Items = nil
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
}

func TestCreateRejectsMissingCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validCreateRequest()
	req.CustomerID = 0
	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestUpdateStatusForwardThenLocked(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	moved, err := svc.UpdateStatus(ctx, order.ID, lifecycle.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusInProgress, moved.Status)

	// Once processing starts the order is no longer editable.
	_, err = svc.Update(ctx, order.ID, dto.UpdateOrderRequest(validCreateRequest()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, lifecycle.ErrOrderLocked))
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	for _, target := range []lifecycle.Status{lifecycle.StatusInProgress, lifecycle.StatusShipped, lifecycle.StatusCompleted} {
		_, err = svc.UpdateStatus(ctx, order.ID, target)
		require.NoError(t, err)
	}

	// Completed orders cannot be cancelled.
	_, err = svc.UpdateStatus(ctx, order.ID, lifecycle.StatusCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lifecycle.ErrIllegalTransition))

	latest, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCompleted, latest.Status)
}

func TestUpdateStatusSkipIsIllegal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, lifecycle.StatusShipped)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lifecycle.ErrIllegalTransition))
}

func TestUpdateStatusConcurrentChange(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// Another actor moves the order between our read and our write.
	store.mu.Lock()
	store.orders[order.ID].Status = lifecycle.StatusCancelled
	store.mu.Unlock()

	// The WHERE-status guard in the store layer loses the race cleanly.
	err = store.UpdateStatus(ctx, order.ID, lifecycle.StatusNew, lifecycle.StatusInProgress, time.Now())
	assert.ErrorIs(t, err, repo.ErrStatusChanged)
}

func TestUpdateEditableOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := dto.UpdateOrderRequest{
		CustomerID:   9,
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 2),
		Notes:        "changed",
		Items:        []dto.OrderItemRequest{{ProductID: 5, Quantity: 4}},
	}
	updated, err := svc.Update(ctx, order.ID, req)
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.CustomerID)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, lifecycle.StatusNew, updated.Status)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 404, dto.UpdateOrderRequest(validCreateRequest()))
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())

	_, err = svc.UpdateStatus(context.Background(), 404, lifecycle.StatusInProgress)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestMutationsPublishChangeEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, hub := newTestService(t)

	events, cancel := hub.Subscribe(8)
	defer cancel()

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, lifecycle.StatusInProgress)
	require.NoError(t, err)

	insert := <-events
	assert.Equal(t, notify.EventInsert, insert.Type)
	assert.Equal(t, order.Number, insert.Order.Number)
	assert.True(t, insert.Order.Editable)

	update := <-events
	assert.Equal(t, notify.EventUpdate, update.Type)
	assert.Equal(t, lifecycle.StatusInProgress.String(), update.Order.Status)
	assert.False(t, update.Order.Editable)
}

func TestToResponseTargetsAndEditable(t *testing.T) {
	order := &entity.Order{ID: 1, Number: "ORD-1", Status: lifecycle.StatusShipped}
	resp := ToResponse(order)
	assert.Equal(t, []string{"completed", "cancelled"}, resp.StatusTargets)
	assert.False(t, resp.Editable)

	order.Status = lifecycle.StatusNew
	resp = ToResponse(order)
	assert.Equal(t, []string{"in_progress", "cancelled"}, resp.StatusTargets)
	assert.True(t, resp.Editable)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// Attach product/customer detail the way repository relations would.
	store.mu.Lock()
	stored := store.orders[order.ID]
	stored.Customer = &entity.Customer{ID: 7, Name: "Cohen Butchers", Code: "C-7"}
	stored.Items[0].Product = &entity.Product{Name: "Entrecote", Category: "beef", Unit: "kg"}
	stored.Items[1].Product = &entity.Product{Name: "Chicken Breast", Category: "poultry", Unit: "kg"}
	store.mu.Unlock()

	out, err := svc.ExportCSV(ctx, repo.ListFilter{})
	require.NoError(t, err)

	text := strings.TrimPrefix(string(out), "\uFEFF")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3) // header + one row per item
	assert.Contains(t, lines[0], "order_number")
	assert.Contains(t, text, "Cohen Butchers")
	assert.Contains(t, text, "Entrecote")
	assert.Contains(t, text, order.Number)
}

func TestRenderPrintDocumentGroupsByCategory(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	order, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	store.mu.Lock()
	stored := store.orders[order.ID]
	stored.Customer = &entity.Customer{Name: "Cohen Butchers", Phone: "03-1234567"}
	stored.Items[0].Product = &entity.Product{Name: "Entrecote", Category: "beef", Unit: "kg"}
	stored.Items[1].Product = &entity.Product{Name: "Chicken Breast", Category: "poultry", Unit: "kg"}
	store.mu.Unlock()

	html, err := svc.RenderPrintDocument(ctx, order.ID)
	require.NoError(t, err)

	doc := string(html)
	assert.Contains(t, doc, order.Number)
	assert.Contains(t, doc, "Cohen Butchers")
	assert.Contains(t, doc, "<h2>beef</h2>")
	assert.Contains(t, doc, "<h2>poultry</h2>")
	// Categories render in sorted order.
	assert.Less(t, strings.Index(doc, "<h2>beef</h2>"), strings.Index(doc, "<h2>poultry</h2>"))
}
