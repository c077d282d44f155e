package create_booking

import (
	"time"

	"github.com/groovetime/booking-engine/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID     int64            // ID пользователя (из внешней аутентификации)
	ProviderID string           // ID провайдера (диджей или конкретная фотобудка)
	EventDate  time.Time        // Дата события (без времени)
	StartTime  types.TimeString // Время начала ("14:00")
	EndTime    types.TimeString // Время окончания ("18:00")
	Notes      *string          // Дополнительные пожелания (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            int64
	UserID        int64
	ProviderID    string
	ServiceType   string
	EventDate     time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	Status        string
	TotalPrice    float64
	PaymentStatus string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// createdEventPayload полезная нагрузка события booking.created
// Диспетчер уведомлений форматирует и отправляет сообщение сам
type createdEventPayload struct {
	BookingID   int64   `json:"bookingId"`
	UserID      int64   `json:"userId"`
	ProviderID  string  `json:"providerId"`
	ServiceType string  `json:"serviceType"`
	EventDate   string  `json:"eventDate"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	TotalPrice  float64 `json:"totalPrice"`
	Status      string  `json:"status"`
}
