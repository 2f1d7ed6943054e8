// Файл: internal/dto/catalog-dto.go
package dto

type ServiceDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	BasePrice   float64 `json:"base_price"`
	Category    string  `json:"category,omitempty"`
}

type ExecutorDTO struct {
	ID              uint64   `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone,omitempty"`
	Rating          float64  `json:"rating"`
	ExperienceYears int      `json:"experience_years"`
	LocationLat     *float64 `json:"current_location_lat,omitempty"`
	LocationLng     *float64 `json:"current_location_lng,omitempty"`
}

// CatalogDTO - ответ GET /api/services: активные услуги и исполнители.
// Кешируется целиком.
type CatalogDTO struct {
	Services  []ServiceDTO  `json:"services"`
	Executors []ExecutorDTO `json:"executors"`
}

type ClientDTO struct {
	ID         uint64 `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Username   string `json:"username,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
}

// UpsertClientDTO - данные для создания/обновления клиента по telegram_id.
type UpsertClientDTO struct {
	TelegramID int64
	Name       string
	Phone      string
	Username   string
	PhotoURL   string
	Role       string
}
