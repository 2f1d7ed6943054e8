// Файл: internal/repositories/catalog-repository.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"electric-service/internal/dto"
	apperrors "electric-service/pkg/errors"
	"electric-service/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbService struct {
	ID          uint64
	Name        string
	Description sql.NullString
	BasePrice   float64
	Category    sql.NullString
}

func (db *dbService) ToDTO() dto.ServiceDTO {
	return dto.ServiceDTO{
		ID:          db.ID,
		Name:        db.Name,
		Description: utils.NullStringToString(db.Description),
		BasePrice:   db.BasePrice,
		Category:    utils.NullStringToString(db.Category),
	}
}

type dbExecutor struct {
	ID              uint64
	Name            string
	Phone           sql.NullString
	Rating          sql.NullFloat64
	ExperienceYears sql.NullInt64
	LocationLat     sql.NullFloat64
	LocationLng     sql.NullFloat64
}

func (db *dbExecutor) ToDTO() dto.ExecutorDTO {
	var years int
	if db.ExperienceYears.Valid {
		years = int(db.ExperienceYears.Int64)
	}
	return dto.ExecutorDTO{
		ID:              db.ID,
		Name:            db.Name,
		Phone:           utils.NullStringToString(db.Phone),
		Rating:          utils.NullFloat64ToFloat64(db.Rating),
		ExperienceYears: years,
		LocationLat:     utils.NullFloat64ToPtr(db.LocationLat),
		LocationLng:     utils.NullFloat64ToPtr(db.LocationLng),
	}
}

const (
	serviceTable   = "services"
	serviceFields  = "id, name, description, base_price, category"
	executorTable  = "executors"
	executorFields = "id, name, phone, rating, experience_years, current_location_lat, current_location_lng"
)

type CatalogRepositoryInterface interface {
	GetServices(ctx context.Context) ([]dto.ServiceDTO, error)
	GetExecutors(ctx context.Context) ([]dto.ExecutorDTO, error)
	FindExecutorByID(ctx context.Context, id uint64) (*dto.ExecutorDTO, error)
	FindExecutorByName(ctx context.Context, name string) (*dto.ExecutorDTO, error)
}

type catalogRepository struct{ storage *pgxpool.Pool }

func NewCatalogRepository(storage *pgxpool.Pool) CatalogRepositoryInterface {
	return &catalogRepository{storage: storage}
}

func (r *catalogRepository) GetServices(ctx context.Context) ([]dto.ServiceDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_active = TRUE ORDER BY category, name", serviceFields, serviceTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]dto.ServiceDTO, 0)
	for rows.Next() {
		var dbRow dbService
		if err := rows.Scan(&dbRow.ID, &dbRow.Name, &dbRow.Description, &dbRow.BasePrice, &dbRow.Category); err != nil {
			return nil, err
		}
		services = append(services, dbRow.ToDTO())
	}
	return services, rows.Err()
}

func (r *catalogRepository) GetExecutors(ctx context.Context) ([]dto.ExecutorDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_active = TRUE ORDER BY rating DESC", executorFields, executorTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executors := make([]dto.ExecutorDTO, 0)
	for rows.Next() {
		var dbRow dbExecutor
		if err := rows.Scan(&dbRow.ID, &dbRow.Name, &dbRow.Phone, &dbRow.Rating, &dbRow.ExperienceYears, &dbRow.LocationLat, &dbRow.LocationLng); err != nil {
			return nil, err
		}
		executors = append(executors, dbRow.ToDTO())
	}
	return executors, rows.Err()
}

func (r *catalogRepository) FindExecutorByID(ctx context.Context, id uint64) (*dto.ExecutorDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", executorFields, executorTable)
	return r.findExecutor(ctx, query, id)
}

// FindExecutorByName ищет активного исполнителя по имени без учёта регистра.
// Так приходит assignee из вебхука Планфикса.
func (r *catalogRepository) FindExecutorByName(ctx context.Context, name string) (*dto.ExecutorDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(name) = LOWER($1) AND is_active = TRUE LIMIT 1", executorFields, executorTable)
	return r.findExecutor(ctx, query, name)
}

func (r *catalogRepository) findExecutor(ctx context.Context, query string, arg interface{}) (*dto.ExecutorDTO, error) {
	var dbRow dbExecutor
	err := r.storage.QueryRow(ctx, query, arg).Scan(&dbRow.ID, &dbRow.Name, &dbRow.Phone, &dbRow.Rating, &dbRow.ExperienceYears, &dbRow.LocationLat, &dbRow.LocationLng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	executorDTO := dbRow.ToDTO()
	return &executorDTO, nil
}
