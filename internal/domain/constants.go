package domain

import "github.com/groovetime/booking-engine/pkg/types"

// Capacity rules per service type
const (
	DJDailyCapacity   = 2 // диджей: максимум два бронирования в день (утро + вечер)
	UnitDailyCapacity = 1 // фотобудка: один заказ на юнит в день
)

// DJ double-booking rules
const (
	// MinGapAfterMorningMinutes минимальный разрыв между концом утреннего
	// и началом второго бронирования того же диджея
	MinGapAfterMorningMinutes = 180
)

// MorningCutoff граница классификации утро/вечер для диджейских бронирований
var MorningCutoff = types.TimeString("11:00")

// Refund policy thresholds (hours until event start)
const (
	FullRefundHours = 168 // больше недели до события: возврат 100%
	HalfRefundHours = 48  // от 48 часов до недели: возврат 50%
)

// Refund percentages
const (
	RefundFull = 100
	RefundHalf = 50
	RefundNone = 0
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих слот
// Используется при подсчёте доступности и проверке конфликтов
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}

// ActiveStatuses список статусов, занимающих слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
