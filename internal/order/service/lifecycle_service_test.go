package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
	"coffeeshop/internal/menu"
	"coffeeshop/internal/notification"
)

// Mock implementations

type mockCustomerRepository struct {
	FindByIDFunc func(ctx context.Context, id uint) (*domain.User, error)
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockSender struct {
	SendFunc func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error)
}

func (m *mockSender) Send(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
	return m.SendFunc(ctx, status)
}

type mockOrderRepository struct {
	FindByIDFunc       func(ctx context.Context, id uint) (*domain.Order, error)
	CreateFunc         func(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateStatusFunc   func(ctx context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error)
	DeleteFunc         func(ctx context.Context, id uint) (*domain.Order, error)
	ListByCustomerFunc func(ctx context.Context, customerID uint) ([]domain.Order, error)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	return m.CreateFunc(ctx, order)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error) {
	return m.UpdateStatusFunc(ctx, id, expected, next)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uint) (*domain.Order, error) {
	return m.DeleteFunc(ctx, id)
}

func (m *mockOrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error) {
	return m.ListByCustomerFunc(ctx, customerID)
}

type recordedNotification struct {
	status domain.OrderStatus
	err    error
}

type fakeRecorder struct {
	mu            sync.Mutex
	transitions   [][2]domain.OrderStatus
	notifications []recordedNotification
}

func (r *fakeRecorder) StatusChanged(from, to domain.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, [2]domain.OrderStatus{from, to})
}

func (r *fakeRecorder) NotificationSent(status domain.OrderStatus, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, recordedNotification{status: status, err: err})
}

// memStore is an in-memory order store with the same conditional update
// semantics as the MySQL repository.
type memStore struct {
	mu        sync.Mutex
	nextID    uint
	orders    map[uint]domain.Order
	clock     time.Time
	afterFind func()
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[uint]domain.Order),
		clock:  time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) FindByID(_ context.Context, id uint) (*domain.Order, error) {
	m.mu.Lock()
	order, ok := m.orders[id]
	m.mu.Unlock()

	if m.afterFind != nil {
		m.afterFind()
	}
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrOrderNotFound, fmt.Sprintf("order with id %d not found", id))
	}
	return &order, nil
}

func (m *memStore) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.clock = m.clock.Add(time.Second)
	stored := *order
	stored.ID = m.nextID
	stored.CreatedAt = m.clock
	m.orders[stored.ID] = stored
	return &stored, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrOrderNotFound, fmt.Sprintf("order with id %d not found", id))
	}
	if order.Status != expected {
		return nil, apperrors.NewConflictError(apperrors.ErrStatusConflict, "status changed")
	}
	order.Status = next
	m.orders[id] = order
	return &order, nil
}

func (m *memStore) Delete(_ context.Context, id uint) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrOrderNotFound, fmt.Sprintf("order with id %d not found", id))
	}
	delete(m.orders, id)
	return &order, nil
}

func (m *memStore) ListByCustomer(_ context.Context, customerID uint) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Order, 0)
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) put(order domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	if order.ID > m.nextID {
		m.nextID = order.ID
	}
}

func (m *memStore) status(id uint) domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].Status
}

// Helpers

func knownCustomers(ids ...uint) *mockCustomerRepository {
	return &mockCustomerRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.User, error) {
			for _, known := range ids {
				if known == id {
					return &domain.User{ID: id, Type: domain.UserTypeCustomer}, nil
				}
			}
			return nil, apperrors.NewNotFoundError(apperrors.ErrCustomerNotFound, fmt.Sprintf("customer with id %d not found", id))
		},
	}
}

func okSender() *mockSender {
	return &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			return &notification.Receipt{Status: status, Message: "sent"}, nil
		},
	}
}

func newTestLifecycleService(orders OrderRepository, customers CustomerRepository, sender notification.Sender, recorder Recorder) *LifecycleService {
	return NewLifecycleService(
		orders,
		customers,
		menu.Default(),
		sender,
		recorder,
		Config{StoreTimeout: time.Second, NotifyTimeout: time.Second},
		zap.NewNop(),
	)
}

// Tests

func TestCreateOrder_Success(t *testing.T) {
	store := newMemStore()
	svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

	order, err := svc.CreateOrder(context.Background(), "Macchiato", "Caramel", 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), order.ID)
	assert.Equal(t, domain.OrderStatusWaiting, order.Status)
	assert.True(t, decimal.RequireFromString("4.5").Equal(order.Price))
	assert.Equal(t, uint(1), order.CustomerID)
	assert.False(t, order.CreatedAt.IsZero())
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	store := newMemStore()
	svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

	order, err := svc.CreateOrder(context.Background(), "Latte", "Vanilla", 42)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)

	orders, err := store.ListByCustomer(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_UnknownMenuItem(t *testing.T) {
	tests := []struct {
		name      string
		product   string
		variation string
		wantErr   error
	}{
		{"unknown product", "Tea", "Green", apperrors.ErrProductNotFound},
		{"unknown variation", "Latte", "Caramel", apperrors.ErrVariationNotFound},
		{"case sensitive", "latte", "Vanilla", apperrors.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

			order, err := svc.CreateOrder(context.Background(), tt.product, tt.variation, 1)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tt.wantErr)

			orders, _ := store.ListByCustomer(context.Background(), 1)
			assert.Empty(t, orders)
		})
	}
}

func TestCreateOrder_StorageFailure(t *testing.T) {
	orders := &mockOrderRepository{
		CreateFunc: func(ctx context.Context, order *domain.Order) (*domain.Order, error) {
			return nil, apperrors.NewStorageError("inserting order", errors.New("connection reset"))
		},
	}
	svc := newTestLifecycleService(orders, knownCustomers(1), okSender(), nil)

	_, err := svc.CreateOrder(context.Background(), "Latte", "Vanilla", 1)
	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
}

func TestAdvanceStatus_WalksPipeline(t *testing.T) {
	store := newMemStore()
	recorder := &fakeRecorder{}

	var mu sync.Mutex
	var sent []domain.OrderStatus
	sender := &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			mu.Lock()
			sent = append(sent, status)
			mu.Unlock()
			return &notification.Receipt{Status: status}, nil
		},
	}
	svc := newTestLifecycleService(store, knownCustomers(1), sender, recorder)

	order, err := svc.CreateOrder(context.Background(), "Latte", "Hazelnut", 1)
	require.NoError(t, err)

	for _, want := range []domain.OrderStatus{
		domain.OrderStatusPreparation,
		domain.OrderStatusReady,
		domain.OrderStatusDelivered,
	} {
		updated, err := svc.AdvanceStatus(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.Status)
		assert.True(t, order.Price.Equal(updated.Price))
	}

	_, err = svc.AdvanceStatus(context.Background(), order.ID)
	assert.ErrorIs(t, err, apperrors.ErrTerminalStatus)
	assert.Equal(t, domain.OrderStatusDelivered, store.status(order.ID))

	assert.Equal(t, []domain.OrderStatus{
		domain.OrderStatusPreparation, domain.OrderStatusReady, domain.OrderStatusDelivered,
	}, sent)
	assert.Len(t, recorder.transitions, 3)
	assert.Len(t, recorder.notifications, 3)
}

func TestAdvanceStatus_CanceledIsInvalid(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 7, Status: domain.OrderStatusCanceled, CustomerID: 1})

	sender := &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			t.Error("no notification expected")
			return nil, nil
		},
	}
	svc := newTestLifecycleService(store, knownCustomers(1), sender, nil)

	order, err := svc.AdvanceStatus(context.Background(), 7)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	assert.Equal(t, domain.OrderStatusCanceled, store.status(7))
}

func TestAdvanceStatus_CorruptedStatus(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 3, Status: domain.OrderStatus("Lost"), CustomerID: 1})
	svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

	_, err := svc.AdvanceStatus(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestAdvanceStatus_OrderNotFound(t *testing.T) {
	svc := newTestLifecycleService(newMemStore(), knownCustomers(1), okSender(), nil)

	_, err := svc.AdvanceStatus(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestAdvanceStatus_NotificationFailureIsNotPropagated(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 1, Status: domain.OrderStatusWaiting, CustomerID: 1})
	recorder := &fakeRecorder{}

	sender := &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			return nil, apperrors.NewTransportError("sending notification", errors.New("smtp down"))
		},
	}
	svc := newTestLifecycleService(store, knownCustomers(1), sender, recorder)

	updated, err := svc.AdvanceStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparation, updated.Status)
	assert.Equal(t, domain.OrderStatusPreparation, store.status(1))

	require.Len(t, recorder.notifications, 1)
	assert.ErrorIs(t, recorder.notifications[0].err, apperrors.ErrTransportFailure)
}

func TestAdvanceStatus_NotificationDetachedFromRequest(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 1, Status: domain.OrderStatusWaiting, CustomerID: 1})

	var sawCanceled atomic.Bool
	sender := &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			time.Sleep(20 * time.Millisecond)
			sawCanceled.Store(ctx.Err() != nil)
			return &notification.Receipt{Status: status}, nil
		},
	}
	svc := newTestLifecycleService(store, knownCustomers(1), sender, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// The request is abandoned right after the write lands.
	svc.orders = &mockOrderRepository{
		FindByIDFunc: store.FindByID,
		UpdateStatusFunc: func(c context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error) {
			updated, err := store.UpdateStatus(c, id, expected, next)
			cancel()
			return updated, err
		},
	}

	_, err := svc.AdvanceStatus(ctx, 1)
	require.NoError(t, err)
	assert.False(t, sawCanceled.Load())
}

func TestAdvanceStatus_NotificationTimeout(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 1, Status: domain.OrderStatusWaiting, CustomerID: 1})
	recorder := &fakeRecorder{}

	sender := &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			<-ctx.Done()
			return nil, apperrors.NewTransportError("notification interrupted", ctx.Err())
		},
	}
	svc := NewLifecycleService(store, knownCustomers(1), menu.Default(), sender, recorder,
		Config{StoreTimeout: time.Second, NotifyTimeout: 20 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	updated, err := svc.AdvanceStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparation, updated.Status)
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, recorder.notifications, 1)
	assert.ErrorIs(t, recorder.notifications[0].err, context.DeadlineExceeded)
}

func TestAdvanceStatus_ConcurrentCallsAdvanceOnce(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 1, Status: domain.OrderStatusWaiting, CustomerID: 1})

	// Both callers read Waiting before either writes.
	var readers sync.WaitGroup
	readers.Add(2)
	store.afterFind = func() {
		readers.Done()
		readers.Wait()
	}

	svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

	var g errgroup.Group
	results := make([]error, 2)
	for i := range results {
		g.Go(func() error {
			_, results[i] = svc.AdvanceStatus(context.Background(), 1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded, conflicted int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrStatusConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, domain.OrderStatusPreparation, store.status(1))
}

func TestAdvanceStatus_LostRaceCancelsNotification(t *testing.T) {
	var notifyCanceled atomic.Bool
	sender := &mockSender{
		SendFunc: func(ctx context.Context, status domain.OrderStatus) (*notification.Receipt, error) {
			<-ctx.Done()
			notifyCanceled.Store(true)
			return nil, ctx.Err()
		},
	}
	orders := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusWaiting}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error) {
			return nil, apperrors.NewConflictError(apperrors.ErrStatusConflict, "status changed")
		},
	}
	svc := NewLifecycleService(orders, knownCustomers(1), menu.Default(), sender, nil,
		Config{StoreTimeout: time.Second, NotifyTimeout: time.Minute}, zap.NewNop())

	_, err := svc.AdvanceStatus(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrStatusConflict)
	assert.True(t, notifyCanceled.Load())
}

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		status  domain.OrderStatus
		wantErr error
	}{
		{domain.OrderStatusWaiting, nil},
		{domain.OrderStatusPreparation, apperrors.ErrInvalidCancellation},
		{domain.OrderStatusReady, apperrors.ErrInvalidCancellation},
		{domain.OrderStatusDelivered, apperrors.ErrInvalidCancellation},
		{domain.OrderStatusCanceled, apperrors.ErrInvalidCancellation},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			store := newMemStore()
			store.put(domain.Order{ID: 5, Status: tt.status, CustomerID: 1})
			svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

			order, err := svc.CancelOrder(context.Background(), 5)
			if tt.wantErr != nil {
				assert.Nil(t, order)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, store.status(5))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCanceled, order.Status)
			assert.Equal(t, domain.OrderStatusCanceled, store.status(5))
		})
	}
}

func TestCancelOrder_RacesWithAdvancement(t *testing.T) {
	orders := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusWaiting}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error) {
			assert.Equal(t, domain.OrderStatusWaiting, expected)
			assert.Equal(t, domain.OrderStatusCanceled, next)
			return nil, apperrors.NewConflictError(apperrors.ErrStatusConflict, "status changed")
		},
	}
	svc := newTestLifecycleService(orders, knownCustomers(1), okSender(), nil)

	_, err := svc.CancelOrder(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCancellation)
	_, isConflict := apperrors.IsConflictError(err)
	assert.True(t, isConflict)
}

func TestCancelOrder_NotFound(t *testing.T) {
	svc := newTestLifecycleService(newMemStore(), knownCustomers(1), okSender(), nil)

	_, err := svc.CancelOrder(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestListByCustomer_StableOrder(t *testing.T) {
	store := newMemStore()
	svc := newTestLifecycleService(store, knownCustomers(1, 2), okSender(), nil)

	for _, item := range [][2]string{{"Latte", "Vanilla"}, {"Donuts", "Jelly"}, {"Espresso", "Single Shot"}} {
		_, err := svc.CreateOrder(context.Background(), item[0], item[1], 1)
		require.NoError(t, err)
	}
	_, err := svc.CreateOrder(context.Background(), "Donuts", "Glazed", 2)
	require.NoError(t, err)

	first, err := svc.ListByCustomer(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.ListByCustomer(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "Latte", first[0].Product)
	assert.Equal(t, "Donuts", first[1].Product)
	assert.Equal(t, "Espresso", first[2].Product)
}

func TestDeleteOrder(t *testing.T) {
	store := newMemStore()
	store.put(domain.Order{ID: 9, Status: domain.OrderStatusReady, CustomerID: 1})
	svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)

	deleted, err := svc.DeleteOrder(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, uint(9), deleted.ID)

	_, err = svc.GetOrder(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestLifecycle_EspressoDoubleShotEndToEnd(t *testing.T) {
	store := newMemStore()
	svc := newTestLifecycleService(store, knownCustomers(1), okSender(), nil)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "Espresso", "Double Shot", 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.5").Equal(order.Price))
	assert.Equal(t, domain.OrderStatusWaiting, order.Status)

	for _, want := range []domain.OrderStatus{
		domain.OrderStatusPreparation,
		domain.OrderStatusReady,
		domain.OrderStatusDelivered,
	} {
		updated, err := svc.AdvanceStatus(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.Status)
	}

	_, err = svc.AdvanceStatus(ctx, order.ID)
	assert.ErrorIs(t, err, apperrors.ErrTerminalStatus)

	_, err = svc.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCancellation)

	final, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, final.Status)
	assert.True(t, decimal.RequireFromString("3.5").Equal(final.Price))
}
