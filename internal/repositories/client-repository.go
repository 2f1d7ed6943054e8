// Файл: internal/repositories/client-repository.go
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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbClient struct {
	ID         uint64
	TelegramID int64
	Name       sql.NullString
	Phone      sql.NullString
	Username   sql.NullString
	PhotoURL   sql.NullString
	Role       string
	CreatedAt  time.Time
	UpdatedAt  sql.NullTime
}

func (db *dbClient) ToDTO() dto.ClientDTO {
	return dto.ClientDTO{
		ID:         db.ID,
		TelegramID: db.TelegramID,
		Name:       utils.NullStringToString(db.Name),
		Phone:      utils.NullStringToString(db.Phone),
		Username:   utils.NullStringToString(db.Username),
		PhotoURL:   utils.NullStringToString(db.PhotoURL),
		Role:       db.Role,
		CreatedAt:  db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
}

const (
	clientTable  = "clients"
	clientFields = "id, telegram_id, name, phone, username, photo_url, role, created_at, updated_at"
)

type ClientRepositoryInterface interface {
	Upsert(ctx context.Context, payload dto.UpsertClientDTO) (*dto.ClientDTO, error)
	UpsertTx(ctx context.Context, tx pgx.Tx, payload dto.UpsertClientDTO) (*dto.ClientDTO, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*dto.ClientDTO, error)
	FindByID(ctx context.Context, id uint64) (*dto.ClientDTO, error)
}

type clientRepository struct{ storage *pgxpool.Pool }

func NewClientRepository(storage *pgxpool.Pool) ClientRepositoryInterface {
	return &clientRepository{storage: storage}
}

// upsert вставляет клиента либо обновляет его профиль по telegram_id.
// COALESCE(NULLIF(...)) не затирает существующие значения пустыми.
func (r *clientRepository) upsert(ctx context.Context, q querier, payload dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (telegram_id, name, phone, username, photo_url, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), %s.name),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), %s.phone),
			username = COALESCE(NULLIF(EXCLUDED.username, ''), %s.username),
			photo_url = COALESCE(NULLIF(EXCLUDED.photo_url, ''), %s.photo_url),
			updated_at = NOW()
		RETURNING %s`,
		clientTable, clientTable, clientTable, clientTable, clientTable, clientFields)

	role := payload.Role
	if role == "" {
		role = "client"
	}

	var dbRow dbClient
	err := q.QueryRow(ctx, query,
		payload.TelegramID, payload.Name, payload.Phone, payload.Username, payload.PhotoURL, role,
	).Scan(&dbRow.ID, &dbRow.TelegramID, &dbRow.Name, &dbRow.Phone, &dbRow.Username, &dbRow.PhotoURL, &dbRow.Role, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		return nil, err
	}
	clientDTO := dbRow.ToDTO()
	return &clientDTO, nil
}

func (r *clientRepository) Upsert(ctx context.Context, payload dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	return r.upsert(ctx, r.storage, payload)
}

func (r *clientRepository) UpsertTx(ctx context.Context, tx pgx.Tx, payload dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	return r.upsert(ctx, tx, payload)
}

func (r *clientRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*dto.ClientDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE telegram_id = $1", clientFields, clientTable)
	return r.findOne(ctx, query, telegramID)
}

func (r *clientRepository) FindByID(ctx context.Context, id uint64) (*dto.ClientDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", clientFields, clientTable)
	return r.findOne(ctx, query, id)
}

func (r *clientRepository) findOne(ctx context.Context, query string, arg interface{}) (*dto.ClientDTO, error) {
	var dbRow dbClient
	err := r.storage.QueryRow(ctx, query, arg).Scan(&dbRow.ID, &dbRow.TelegramID, &dbRow.Name, &dbRow.Phone, &dbRow.Username, &dbRow.PhotoURL, &dbRow.Role, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	clientDTO := dbRow.ToDTO()
	return &clientDTO, nil
}
