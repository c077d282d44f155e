package domain

import (
	"time"

	"github.com/groovetime/booking-engine/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// ActorRole роль инициатора операции (приходит из внешней аутентификации)
type ActorRole string

const (
	RoleUser  ActorRole = "user"
	RoleAdmin ActorRole = "admin"
)

// Valid returns true for a known actor role
func (r ActorRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Booking represents an event-service booking (DJ set or photobooth rental)
// Bookings are never hard-deleted: cancelled rows are retained for audit
type Booking struct {
	ID          int64
	UserID      int64
	ProviderID  string
	ServiceType ServiceType
	EventDate   time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString

	Status        BookingStatus
	TotalPrice    float64
	PaymentStatus PaymentStatus
	PaymentRef    *string // внешний идентификатор платежа (idempotency key для markPaid)

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
// Отмененное бронирование освобождает слот сразу же
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCompleted returns true if the booking can transition to completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusConfirmed
}

// IsTerminal returns true if the booking is in a terminal state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// EventStart возвращает полную дату-время начала события
func (b *Booking) EventStart() time.Time {
	return b.StartTime.OnDate(b.EventDate)
}

// ProviderBookingsFilter фильтр для получения бронирований провайдера
type ProviderBookingsFilter struct {
	ProviderID      string         // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отмененные бронирования
}
