package services

import (
	"context"
	"sync"
	"testing"

	"electric-service/internal/dto"
	"electric-service/pkg/constants"
	apperrors "electric-service/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore - общее состояние фейковых репозиториев. Методы, которые обязаны
// выполняться в транзакции, проверяют флаг inTx: так ловится запись статуса
// или истории мимо общей транзакции.
type fakeStore struct {
	mu      sync.Mutex
	inTx    bool
	nextID  uint64
	orders  map[uint64]dto.OrderDTO
	items   map[uint64][]dto.OrderServiceItemDTO
	history []dto.OrderStatusHistoryDTO
	chatIDs map[uint64]int64

	findCalls     int
	txRuns        int
	outsideTxHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:  1,
		orders:  map[uint64]dto.OrderDTO{},
		items:   map[uint64][]dto.OrderServiceItemDTO{},
		chatIDs: map[uint64]int64{},
	}
}

func (s *fakeStore) requireTx() {
	if !s.inTx {
		s.outsideTxHits++
	}
}

type fakeTxManager struct{ store *fakeStore }

func (m *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	m.store.mu.Lock()
	m.store.txRuns++
	m.store.inTx = true
	m.store.mu.Unlock()

	err := fn(nil)

	m.store.mu.Lock()
	m.store.inTx = false
	m.store.mu.Unlock()
	return err
}

type fakeOrderRepo struct{ store *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, _ pgx.Tx, clientID uint64, payload dto.CreateOrderDTO, status string, totalPrice float64) (uint64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireTx()

	id := s.nextID
	s.nextID++
	s.orders[id] = dto.OrderDTO{
		ID:         id,
		ClientID:   clientID,
		ExecutorID: payload.ExecutorID,
		Status:     status,
		Address:    payload.Address,
		TotalPrice: totalPrice,
	}
	s.chatIDs[id] = payload.TelegramID
	return id, nil
}

func (r *fakeOrderRepo) AddOrderService(_ context.Context, _ pgx.Tx, orderID uint64, item dto.OrderServiceItemDTO) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireTx()
	s.items[orderID] = append(s.items[orderID], item)
	return nil
}

func (r *fakeOrderRepo) GetOrders(_ context.Context, _ dto.OrderFilterDTO) ([]dto.OrderDTO, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]dto.OrderDTO, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *fakeOrderRepo) FindOrder(_ context.Context, id uint64) (*dto.OrderDTO, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	order, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) FindByPlanfixTaskID(_ context.Context, taskID string) (*dto.OrderDTO, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.PlanfixTaskID == taskID {
			o := order
			return &o, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeOrderRepo) GetOrderServices(_ context.Context, orderID uint64) ([]dto.OrderServiceItemDTO, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.OrderServiceItemDTO(nil), s.items[orderID]...), nil
}

func (r *fakeOrderRepo) UpdateOrder(_ context.Context, id uint64, payload dto.UpdateOrderDTO) (*dto.OrderDTO, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if payload.Status != nil {
		order.Status = *payload.Status
	}
	if payload.ExecutorID != nil {
		order.ExecutorID = payload.ExecutorID
	}
	if payload.PlanfixTaskID != nil {
		order.PlanfixTaskID = *payload.PlanfixTaskID
	}
	s.orders[id] = order
	return &order, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireTx()
	order, ok := s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	order.Status = status
	s.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) AssignExecutor(_ context.Context, _ pgx.Tx, id uint64, executorID uint64, status string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireTx()
	order, ok := s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	order.ExecutorID = &executorID
	order.Status = status
	s.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) SetPlanfixTaskID(_ context.Context, id uint64, taskID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	order.PlanfixTaskID = taskID
	s.orders[id] = order
	return nil
}

func (r *fakeOrderRepo) DeleteOrder(_ context.Context, id uint64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (r *fakeOrderRepo) ResolveClientChatID(_ context.Context, orderID uint64) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	chatID, ok := s.chatIDs[orderID]
	if !ok || chatID == 0 {
		return 0, apperrors.ErrNotFound
	}
	return chatID, nil
}

type fakeClientRepo struct{ store *fakeStore }

func (r *fakeClientRepo) Upsert(_ context.Context, payload dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	return &dto.ClientDTO{ID: 1, TelegramID: payload.TelegramID, Name: payload.Name, Role: "client"}, nil
}

func (r *fakeClientRepo) UpsertTx(_ context.Context, _ pgx.Tx, payload dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	r.store.mu.Lock()
	r.store.requireTx()
	r.store.mu.Unlock()
	return &dto.ClientDTO{ID: 1, TelegramID: payload.TelegramID, Name: payload.Name, Role: "client"}, nil
}

func (r *fakeClientRepo) FindByTelegramID(_ context.Context, _ int64) (*dto.ClientDTO, error) {
	return nil, apperrors.ErrNotFound
}

func (r *fakeClientRepo) FindByID(_ context.Context, _ uint64) (*dto.ClientDTO, error) {
	return nil, apperrors.ErrNotFound
}

type fakeHistoryRepo struct{ store *fakeStore }

func (r *fakeHistoryRepo) Append(_ context.Context, _ pgx.Tx, orderID uint64, status, comment, changedBy string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireTx()
	s.history = append(s.history, dto.OrderStatusHistoryDTO{
		ID:        uint64(len(s.history) + 1),
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		ChangedBy: changedBy,
	})
	return nil
}

func (r *fakeHistoryRepo) FindByOrderID(_ context.Context, orderID uint64) ([]dto.OrderStatusHistoryDTO, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]dto.OrderStatusHistoryDTO, 0)
	for _, row := range s.history {
		if row.OrderID == orderID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeCatalogRepo struct{}

func (r *fakeCatalogRepo) GetServices(_ context.Context) ([]dto.ServiceDTO, error)   { return nil, nil }
func (r *fakeCatalogRepo) GetExecutors(_ context.Context) ([]dto.ExecutorDTO, error) { return nil, nil }
func (r *fakeCatalogRepo) FindExecutorByID(_ context.Context, id uint64) (*dto.ExecutorDTO, error) {
	return &dto.ExecutorDTO{ID: id, Name: "Мастер"}, nil
}
func (r *fakeCatalogRepo) FindExecutorByName(_ context.Context, name string) (*dto.ExecutorDTO, error) {
	return &dto.ExecutorDTO{ID: 7, Name: name}, nil
}

type fakePlanfixClient struct {
	mu          sync.Mutex
	createCalls int
	updateCalls int
}

func (c *fakePlanfixClient) CreateTask(_ context.Context, _ dto.CreatePlanfixTaskDTO) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	return "555", nil
}

func (c *fakePlanfixClient) UpdateTaskStatus(_ context.Context, _, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateCalls++
	return nil
}

func (c *fakePlanfixClient) Configured() bool { return true }

type fakeNotifier struct {
	mu       sync.Mutex
	tgCalls  int
	messages []dto.NotifyOrderDTO
}

func (n *fakeNotifier) NotifyOrderTelegram(_ context.Context, _ int64, order dto.NotifyOrderDTO) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tgCalls++
	n.messages = append(n.messages, order)
	return 1, nil
}

func (n *fakeNotifier) SendEmail(_, _, _ string) error    { return nil }
func (n *fakeNotifier) SendFeedback(_, _, _ string) error { return nil }
func (n *fakeNotifier) ForwardToSheets(_ context.Context, _ interface{}) error {
	return nil
}

func newTestOrderService(store *fakeStore) OrderServiceInterface {
	return NewOrderService(
		&fakeTxManager{store: store},
		&fakeOrderRepo{store: store},
		&fakeClientRepo{store: store},
		&fakeHistoryRepo{store: store},
		&fakeCatalogRepo{},
		&fakePlanfixClient{},
		&fakeNotifier{},
		zap.NewNop(),
	)
}

func seedOrder(store *fakeStore, status string, chatID int64) uint64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	id := store.nextID
	store.nextID++
	store.orders[id] = dto.OrderDTO{ID: id, ClientID: 1, Status: status, Address: "ул. Ленина, 1", TotalPrice: 1500}
	store.chatIDs[id] = chatID
	return id
}

func TestTransition_InvalidStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)
	orderID := seedOrder(store, constants.StatusNew, 100)

	res, err := svc.Transition(context.Background(), orderID, "galactic", "", "tester")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	assert.Nil(t, res)

	// До проверки статуса хранилище не трогается.
	assert.Zero(t, store.findCalls)
	assert.Zero(t, store.txRuns)
	assert.Empty(t, store.history)
	assert.Equal(t, constants.StatusNew, store.orders[orderID].Status)
}

func TestTransition_OrderNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)

	res, err := svc.Transition(context.Background(), 404, constants.StatusCompleted, "", "tester")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, res)
	assert.Zero(t, store.txRuns)
}

func TestTransition_Success(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)
	orderID := seedOrder(store, constants.StatusAssigned, 100)

	res, err := svc.Transition(context.Background(), orderID, constants.StatusInProgress, "приступил", "executor_7")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, orderID, res.OrderID)
	assert.Equal(t, constants.StatusInProgress, res.NewStatus)
	assert.True(t, res.NotificationAttempted)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, constants.StatusInProgress, store.orders[orderID].Status)
	require.Len(t, store.history, 1)
	assert.Equal(t, constants.StatusInProgress, store.history[0].Status)
	assert.Equal(t, "приступил", store.history[0].Comment)
	assert.Equal(t, "executor_7", store.history[0].ChangedBy)

	// Обновление заказа и история - в одной транзакции, мимо неё ничего не писалось.
	assert.Equal(t, 1, store.txRuns)
	assert.Zero(t, store.outsideTxHits)
}

func TestTransition_RepeatAppendsHistory(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)
	orderID := seedOrder(store, constants.StatusNew, 100)

	_, err := svc.Transition(context.Background(), orderID, constants.StatusCompleted, "", "tester")
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), orderID, constants.StatusCompleted, "", "tester")
	require.NoError(t, err)

	// Идемпотентности нет: повтор того же статуса даёт вторую строку истории.
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.history, 2)
	assert.Equal(t, constants.StatusCompleted, store.orders[orderID].Status)
}

func TestTransition_NoChatID(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)
	orderID := seedOrder(store, constants.StatusNew, 0)

	res, err := svc.Transition(context.Background(), orderID, constants.StatusCancelled, "", "admin")
	require.NoError(t, err)

	// Чат клиента неизвестен: уведомления нет, но смена статуса состоялась.
	assert.False(t, res.NotificationAttempted)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, constants.StatusCancelled, store.orders[orderID].Status)
	assert.Len(t, store.history, 1)
}

func TestCreateOrder_TotalPriceAndStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)

	res, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		TelegramID: 777,
		ClientName: "Иван",
		Phone:      "+79990000000",
		Address:    "пр. Мира, 5",
		Services: []dto.OrderServiceItemDTO{
			{ServiceID: 1, Name: "Замена розетки", Price: 1000, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	store.mu.Lock()
	defer store.mu.Unlock()
	order := store.orders[res.OrderID]
	assert.Equal(t, constants.StatusNew, order.Status)
	assert.Equal(t, float64(2000), order.TotalPrice)

	require.Len(t, store.history, 1)
	assert.Equal(t, constants.StatusNew, store.history[0].Status)
	assert.Equal(t, "client_777", store.history[0].ChangedBy)
	assert.Zero(t, store.outsideTxHits)
}

func TestCreateOrder_WithExecutorStartsAssigned(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)

	executorID := uint64(3)
	res, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		TelegramID: 778,
		Phone:      "+79990000001",
		Address:    "пр. Мира, 6",
		ExecutorID: &executorID,
		Services: []dto.OrderServiceItemDTO{
			{ServiceID: 2, Price: 500, Quantity: 1},
		},
	})
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, constants.StatusAssigned, store.orders[res.OrderID].Status)
}

func TestCreateOrder_EmptyServices(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)

	res, err := svc.CreateOrder(context.Background(), dto.CreateOrderDTO{
		TelegramID: 779,
		Phone:      "+79990000002",
		Address:    "пр. Мира, 7",
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Zero(t, store.txRuns)
}

func TestUpdateOrder_NoFields(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)
	orderID := seedOrder(store, constants.StatusNew, 100)

	res, err := svc.UpdateOrder(context.Background(), orderID, dto.UpdateOrderDTO{})
	require.Error(t, err)
	assert.Nil(t, res)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestOrderService(store)
	orderID := seedOrder(store, constants.StatusNew, 100)

	bad := "exploded"
	_, err := svc.UpdateOrder(context.Background(), orderID, dto.UpdateOrderDTO{Status: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	assert.Equal(t, constants.StatusNew, store.orders[orderID].Status)
}
