package domain

import "time"

// EventType тип lifecycle-события бронирования
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingCompleted EventType = "booking.completed"
)

// BookingEvent lifecycle-событие для Notification Dispatcher
// Записывается в outbox в той же транзакции, что и переход статуса:
// ровно одно событие на переход, доставка at-least-once, дедупликация
// на стороне потребителя по EventID
type BookingEvent struct {
	ID          int64
	EventID     string // uuid, ключ дедупликации
	BookingID   int64
	Type        EventType
	Payload     []byte // JSON для диспетчера уведомлений
	CreatedAt   time.Time
	PublishedAt *time.Time
}
