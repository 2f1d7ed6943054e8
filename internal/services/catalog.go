// Файл: internal/services/catalog.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"electric-service/internal/dto"
	"electric-service/internal/repositories"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	catalogCacheKey = "catalog:v1"
	catalogCacheTTL = 10 * time.Minute
)

type CatalogServiceInterface interface {
	GetCatalog(ctx context.Context) (*dto.CatalogDTO, error)
}

type catalogService struct {
	catalogRepo repositories.CatalogRepositoryInterface
	cache       repositories.CacheRepositoryInterface
	logger      *zap.Logger
}

func NewCatalogService(
	catalogRepo repositories.CatalogRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) CatalogServiceInterface {
	return &catalogService{catalogRepo: catalogRepo, cache: cache, logger: logger}
}

// GetCatalog отдаёт каталог услуг и исполнителей. Кеш на 10 минут;
// любая ошибка кеша - просто поход в базу.
func (s *catalogService) GetCatalog(ctx context.Context) (*dto.CatalogDTO, error) {
	if cached, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
		var catalog dto.CatalogDTO
		if jsonErr := json.Unmarshal([]byte(cached), &catalog); jsonErr == nil {
			return &catalog, nil
		}
		s.logger.Warn("повреждённое значение в кеше каталога", zap.String("key", catalogCacheKey))
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("кеш каталога недоступен", zap.Error(err))
	}

	services, err := s.catalogRepo.GetServices(ctx)
	if err != nil {
		return nil, err
	}
	executors, err := s.catalogRepo.GetExecutors(ctx)
	if err != nil {
		return nil, err
	}

	catalog := dto.CatalogDTO{Services: services, Executors: executors}

	if raw, err := json.Marshal(catalog); err == nil {
		if err := s.cache.Set(ctx, catalogCacheKey, raw, catalogCacheTTL); err != nil {
			s.logger.Warn("не удалось записать каталог в кеш", zap.Error(err))
		}
	}

	return &catalog, nil
}
