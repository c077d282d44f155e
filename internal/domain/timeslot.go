package domain

import (
	"time"

	"github.com/groovetime/booking-engine/pkg/types"
)

// SlotType classifies a time slot for the double-booking rules
type SlotType string

const (
	SlotMorning SlotType = "morning" // диджейский слот, заканчивается не позже 11:00
	SlotEvening SlotType = "evening" // диджейский слот, занимает остаток дня
	SlotUnit    SlotType = "unit"    // слот фотобудки, занимает весь день юнита
)

// TimeSlot is owned exclusively by one booking and is created
// and cancelled in lockstep with it, in the same transaction
type TimeSlot struct {
	ID         int64
	BookingID  int64
	ProviderID string
	SlotDate   time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	SlotType   SlotType
	Status     BookingStatus
	CreatedAt  time.Time
}

// ClassifySlot определяет тип слота по фактическим сохранённым временам,
// а не по выбранной пользователем метке, чтобы ручные правки оставались консистентными
// Слот, пересекающий 11:00, классифицируется как вечерний
func ClassifySlot(serviceType ServiceType, start, end types.TimeString) SlotType {
	if serviceType == ServiceTypePhotoboothUnit {
		return SlotUnit
	}
	if !end.IsAfter(MorningCutoff) {
		return SlotMorning
	}
	return SlotEvening
}
