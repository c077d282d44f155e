package create_booking

import (
	"context"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking, slots []*domain.TimeSlot) (*domain.Booking, error)
	GetActiveByProviderAndDate(ctx context.Context, providerID string, date time.Time) ([]*domain.Booking, error)
}

// BlockRepository интерфейс репозитория административных блокировок
type BlockRepository interface {
	ExistsForDate(ctx context.Context, providerID string, date time.Time) (bool, error)
}

// OutboxRepository интерфейс outbox-таблицы lifecycle-событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.BookingEvent) error
}

// ProviderRegistry реестр бронируемых ресурсов
type ProviderRegistry interface {
	Get(id string) (*domain.Provider, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache кеш карт доступности (может отсутствовать)
type AvailabilityCache interface {
	Invalidate(ctx context.Context, providerID string, date time.Time) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
