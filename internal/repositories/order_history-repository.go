// Файл: internal/repositories/order_history-repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"electric-service/internal/dto"
	"electric-service/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbOrderHistory struct {
	ID        uint64
	OrderID   uint64
	Status    string
	Comment   sql.NullString
	ChangedBy sql.NullString
	CreatedAt time.Time
}

func (db *dbOrderHistory) ToDTO() dto.OrderStatusHistoryDTO {
	return dto.OrderStatusHistoryDTO{
		ID:        db.ID,
		OrderID:   db.OrderID,
		Status:    db.Status,
		Comment:   utils.NullStringToString(db.Comment),
		ChangedBy: utils.NullStringToString(db.ChangedBy),
		CreatedAt: db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
}

const (
	orderHistoryTable  = "order_status_history"
	orderHistoryFields = "id, order_id, status, comment, changed_by, created_at"
)

type OrderHistoryRepositoryInterface interface {
	Append(ctx context.Context, tx pgx.Tx, orderID uint64, status, comment, changedBy string) error
	FindByOrderID(ctx context.Context, orderID uint64) ([]dto.OrderStatusHistoryDTO, error)
}

type orderHistoryRepository struct{ storage *pgxpool.Pool }

func NewOrderHistoryRepository(storage *pgxpool.Pool) OrderHistoryRepositoryInterface {
	return &orderHistoryRepository{storage: storage}
}

// Append пишет строку истории в рамках транзакции смены статуса.
// История append-only, строки никогда не правятся и не удаляются.
func (r *orderHistoryRepository) Append(ctx context.Context, tx pgx.Tx, orderID uint64, status, comment, changedBy string) error {
	query := fmt.Sprintf("INSERT INTO %s (order_id, status, comment, changed_by) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))", orderHistoryTable)
	_, err := tx.Exec(ctx, query, orderID, status, comment, changedBy)
	return err
}

func (r *orderHistoryRepository) FindByOrderID(ctx context.Context, orderID uint64) ([]dto.OrderStatusHistoryDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE order_id = $1 ORDER BY created_at DESC, id DESC", orderHistoryFields, orderHistoryTable)
	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]dto.OrderStatusHistoryDTO, 0)
	for rows.Next() {
		var dbRow dbOrderHistory
		if err := rows.Scan(&dbRow.ID, &dbRow.OrderID, &dbRow.Status, &dbRow.Comment, &dbRow.ChangedBy, &dbRow.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, dbRow.ToDTO())
	}
	return history, rows.Err()
}
