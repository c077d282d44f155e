package get_availability

import (
	"context"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CountActiveByDateForMonth(ctx context.Context, providerID string, monthStart, monthEnd time.Time) (map[string]int, error)
}

// BlockRepository интерфейс репозитория административных блокировок
type BlockRepository interface {
	GetByProviderForPeriod(ctx context.Context, providerID string, from, to time.Time) ([]*domain.AvailabilityBlock, error)
}

// ProviderRegistry интерфейс реестра провайдеров
type ProviderRegistry interface {
	Get(id string) (*domain.Provider, error)
}

// AvailabilityCache интерфейс кеша карт доступности
type AvailabilityCache interface {
	Get(ctx context.Context, providerID string, year, month int) ([]byte, bool, error)
	Set(ctx context.Context, providerID string, year, month int, data []byte) error
}

// TimeProvider интерфейс для получения текущего времени (подменяется в тестах)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реализация TimeProvider на системных часах
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
