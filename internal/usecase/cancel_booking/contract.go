package cancel_booking

import (
	"context"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string) error
	MarkRefunded(ctx context.Context, id int64) error
}

// OutboxRepository интерфейс outbox-таблицы lifecycle-событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.BookingEvent) error
}

// PaymentsClient интерфейс платежного провайдера для возвратов
type PaymentsClient interface {
	RefundPayment(ctx context.Context, paymentRef string, amount float64, idempotencyKey string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache интерфейс кеша доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, providerID string, date time.Time) error
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
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
