// Файл: internal/repositories/order-repository.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"electric-service/internal/dto"
	apperrors "electric-service/pkg/errors"
	"electric-service/pkg/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type dbOrder struct {
	ID            uint64
	ClientID      uint64
	ClientName    sql.NullString
	Phone         sql.NullString
	ExecutorID    sql.NullInt64
	Status        string
	Address       string
	ScheduledDate sql.NullTime
	ScheduledTime sql.NullString
	TotalPrice    float64
	ClientNotes   sql.NullString
	PlanfixTaskID sql.NullString
	CreatedAt     time.Time
	UpdatedAt     sql.NullTime
}

func (db *dbOrder) ToDTO() dto.OrderDTO {
	var scheduledDate string
	if db.ScheduledDate.Valid {
		scheduledDate = db.ScheduledDate.Time.Format("2006-01-02")
	}
	return dto.OrderDTO{
		ID:            db.ID,
		ClientID:      db.ClientID,
		ClientName:    utils.NullStringToString(db.ClientName),
		Phone:         utils.NullStringToString(db.Phone),
		ExecutorID:    utils.NullInt64ToUint64Ptr(db.ExecutorID),
		Status:        db.Status,
		Address:       db.Address,
		ScheduledDate: scheduledDate,
		ScheduledTime: utils.NullStringToString(db.ScheduledTime),
		TotalPrice:    db.TotalPrice,
		ClientNotes:   utils.NullStringToString(db.ClientNotes),
		PlanfixTaskID: utils.NullStringToString(db.PlanfixTaskID),
		CreatedAt:     db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		UpdatedAt:     utils.NullTimeToEmptyString(db.UpdatedAt),
	}
}

const (
	orderTable        = "orders"
	orderServiceTable = "order_services"
	orderFields       = "o.id, o.client_id, c.name, c.phone, o.executor_id, o.status, o.address, o.scheduled_date, o.scheduled_time, o.total_price, o.client_notes, o.planfix_task_id, o.created_at, o.updated_at"
	orderJoin         = "orders o JOIN clients c ON c.id = o.client_id"
)

type OrderRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, clientID uint64, payload dto.CreateOrderDTO, status string, totalPrice float64) (uint64, error)
	AddOrderService(ctx context.Context, tx pgx.Tx, orderID uint64, item dto.OrderServiceItemDTO) error
	GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]dto.OrderDTO, error)
	FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error)
	FindByPlanfixTaskID(ctx context.Context, taskID string) (*dto.OrderDTO, error)
	GetOrderServices(ctx context.Context, orderID uint64) ([]dto.OrderServiceItemDTO, error)
	UpdateOrder(ctx context.Context, id uint64, payload dto.UpdateOrderDTO) (*dto.OrderDTO, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error
	AssignExecutor(ctx context.Context, tx pgx.Tx, id uint64, executorID uint64, status string) error
	SetPlanfixTaskID(ctx context.Context, id uint64, taskID string) error
	DeleteOrder(ctx context.Context, id uint64) error
	ResolveClientChatID(ctx context.Context, orderID uint64) (int64, error)
}

type orderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderRepositoryInterface {
	return &orderRepository{storage: storage, logger: logger}
}

func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, clientID uint64, payload dto.CreateOrderDTO, status string, totalPrice float64) (uint64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (client_id, executor_id, status, address, scheduled_date, scheduled_time, total_price, client_notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, NULLIF($6, ''), $7, NULLIF($8, ''))
		RETURNING id`, orderTable)

	var id uint64
	err := tx.QueryRow(ctx, query,
		clientID, payload.ExecutorID, status, payload.Address,
		payload.ScheduledDate, payload.ScheduledTime, totalPrice, payload.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, apperrors.ErrBadRequest
		}
		return 0, err
	}
	return id, nil
}

func (r *orderRepository) AddOrderService(ctx context.Context, tx pgx.Tx, orderID uint64, item dto.OrderServiceItemDTO) error {
	query := fmt.Sprintf("INSERT INTO %s (order_id, service_id, quantity, price) VALUES ($1, $2, $3, $4)", orderServiceTable)
	_, err := tx.Exec(ctx, query, orderID, item.ServiceID, item.Quantity, item.Price)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrBadRequest
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]dto.OrderDTO, error) {
	builder := sq.Select(orderFields).
		From(orderJoin).
		OrderBy("o.created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"o.status": filter.Status})
	}
	if filter.ExecutorID != nil {
		builder = builder.Where(sq.Eq{"o.executor_id": *filter.ExecutorID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]dto.OrderDTO, 0)
	for rows.Next() {
		var dbRow dbOrder
		if err := scanOrder(rows, &dbRow); err != nil {
			return nil, err
		}
		orders = append(orders, dbRow.ToDTO())
	}
	return orders, rows.Err()
}

func (r *orderRepository) FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE o.id = $1", orderFields, orderJoin)
	return r.findOne(ctx, query, id)
}

func (r *orderRepository) FindByPlanfixTaskID(ctx context.Context, taskID string) (*dto.OrderDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE o.planfix_task_id = $1 LIMIT 1", orderFields, orderJoin)
	return r.findOne(ctx, query, taskID)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg interface{}) (*dto.OrderDTO, error) {
	var dbRow dbOrder
	if err := scanOrder(r.storage.QueryRow(ctx, query, arg), &dbRow); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	orderDTO := dbRow.ToDTO()
	return &orderDTO, nil
}

func scanOrder(row pgx.Row, dbRow *dbOrder) error {
	return row.Scan(
		&dbRow.ID, &dbRow.ClientID, &dbRow.ClientName, &dbRow.Phone,
		&dbRow.ExecutorID, &dbRow.Status, &dbRow.Address,
		&dbRow.ScheduledDate, &dbRow.ScheduledTime, &dbRow.TotalPrice,
		&dbRow.ClientNotes, &dbRow.PlanfixTaskID, &dbRow.CreatedAt, &dbRow.UpdatedAt,
	)
}

func (r *orderRepository) GetOrderServices(ctx context.Context, orderID uint64) ([]dto.OrderServiceItemDTO, error) {
	query := fmt.Sprintf(`
		SELECT os.service_id, s.name, os.price, os.quantity
		FROM %s os JOIN %s s ON s.id = os.service_id
		WHERE os.order_id = $1
		ORDER BY os.id`, orderServiceTable, serviceTable)

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]dto.OrderServiceItemDTO, 0)
	for rows.Next() {
		var item dto.OrderServiceItemDTO
		if err := rows.Scan(&item.ServiceID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) UpdateOrder(ctx context.Context, id uint64, payload dto.UpdateOrderDTO) (*dto.OrderDTO, error) {
	builder := sq.Update(orderTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if payload.Status != nil {
		builder = builder.Set("status", *payload.Status)
	}
	if payload.ExecutorID != nil {
		builder = builder.Set("executor_id", *payload.ExecutorID)
	}
	if payload.PlanfixTaskID != nil {
		builder = builder.Set("planfix_task_id", *payload.PlanfixTaskID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperrors.ErrBadRequest
		}
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindOrder(ctx, id)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error {
	query := fmt.Sprintf("UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2", orderTable)
	result, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AssignExecutor назначает исполнителя и одновременно переводит заказ в
// новый статус: строка истории без такого же обновления заказа недопустима.
func (r *orderRepository) AssignExecutor(ctx context.Context, tx pgx.Tx, id uint64, executorID uint64, status string) error {
	query := fmt.Sprintf("UPDATE %s SET executor_id = $1, status = $2, updated_at = NOW() WHERE id = $3", orderTable)
	result, err := tx.Exec(ctx, query, executorID, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) SetPlanfixTaskID(ctx context.Context, id uint64, taskID string) error {
	query := fmt.Sprintf("UPDATE %s SET planfix_task_id = $1, updated_at = NOW() WHERE id = $2", orderTable)
	result, err := r.storage.Exec(ctx, query, taskID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", orderTable)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ResolveClientChatID возвращает telegram_id клиента заказа для уведомлений.
func (r *orderRepository) ResolveClientChatID(ctx context.Context, orderID uint64) (int64, error) {
	query := fmt.Sprintf("SELECT c.telegram_id FROM %s WHERE o.id = $1", orderJoin)
	var chatID int64
	if err := r.storage.QueryRow(ctx, query, orderID).Scan(&chatID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, err
	}
	return chatID, nil
}
