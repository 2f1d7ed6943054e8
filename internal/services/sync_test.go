package services

import (
	"context"
	"fmt"
	"testing"

	"electric-service/internal/dto"
	"electric-service/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSyncService(store *fakeStore) SyncServiceInterface {
	orderSvc := newTestOrderService(store)
	return NewSyncService(
		&fakePlanfixClient{},
		orderSvc,
		&fakeOrderRepo{store: store},
		&fakeCatalogRepo{},
		zap.NewNop(),
	)
}

func TestProcessWebhook_Assignment(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store)

	orderID := seedOrder(store, constants.StatusNew, 100)
	store.mu.Lock()
	order := store.orders[orderID]
	order.PlanfixTaskID = "555"
	store.orders[orderID] = order
	store.mu.Unlock()

	res, err := svc.ProcessWebhook(context.Background(), dto.PlanfixWebhookDTO{
		EventType: "task.assigned",
		TaskID:    "555",
		Assignee:  "Олег Мастеров",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, orderID, res.OrderID)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotNil(t, store.orders[orderID].ExecutorID)
	assert.Equal(t, uint64(7), *store.orders[orderID].ExecutorID)
	assert.Equal(t, constants.StatusAssigned, store.orders[orderID].Status)

	require.Len(t, store.history, 1)
	assert.Equal(t, constants.StatusAssigned, store.history[0].Status)
	assert.Equal(t, "planfix_webhook", store.history[0].ChangedBy)
	assert.Contains(t, store.history[0].Comment, "Олег Мастеров")
}

func TestProcessWebhook_AssignmentUnknownTask(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store)

	res, err := svc.ProcessWebhook(context.Background(), dto.PlanfixWebhookDTO{
		EventType: "task.assigned",
		TaskID:    "999",
		Assignee:  "Олег",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "skipped")
	assert.Empty(t, store.history)
}

func TestProcessWebhook_StatusUpdate(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store)
	orderID := seedOrder(store, constants.StatusInProgress, 100)

	res, err := svc.ProcessWebhook(context.Background(), dto.PlanfixWebhookDTO{
		Event: "task.status.changed",
		Task: &dto.PlanfixWebhookTask{
			ID:     900,
			Title:  fmt.Sprintf("Заявка #%d - Иван", orderID),
			Status: &dto.PlanfixWebhookStatus{Name: "Завершена"},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, constants.StatusCompleted, res.Status)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, constants.StatusCompleted, store.orders[orderID].Status)
	assert.Equal(t, "900", store.orders[orderID].PlanfixTaskID)
	require.Len(t, store.history, 1)
	assert.Equal(t, "planfix_webhook", store.history[0].ChangedBy)
}

func TestProcessWebhook_Skips(t *testing.T) {
	store := newFakeStore()
	svc := newTestSyncService(store)
	seedOrder(store, constants.StatusNew, 100)

	cases := []dto.PlanfixWebhookDTO{
		{},
		{EventType: "task.created", TaskID: "1", Assignee: "Олег"},
		{EventType: "task.assigned"},
		{Event: "x", Task: &dto.PlanfixWebhookTask{ID: 0}},
		{Event: "x", Task: &dto.PlanfixWebhookTask{ID: 5, Title: "Обычная задача", Status: &dto.PlanfixWebhookStatus{Name: "Новая"}}},
		{Event: "x", Task: &dto.PlanfixWebhookTask{ID: 5, Title: "Заявка #1 - Иван"}},
		{Event: "x", Task: &dto.PlanfixWebhookTask{ID: 5, Title: "Заявка #12345 - Нет такого", Status: &dto.PlanfixWebhookStatus{Name: "Новая"}}},
	}

	for i, payload := range cases {
		res, err := svc.ProcessWebhook(context.Background(), payload)
		require.NoError(t, err, "case %d", i)
		assert.True(t, res.Success, "case %d", i)
		assert.Contains(t, res.Message, "skipped", "case %d", i)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.history)
}
