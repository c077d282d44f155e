package create_booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/types"
)

func djBooking(start, end types.TimeString) *domain.Booking {
	return &domain.Booking{
		ProviderID:  "dj-main",
		ServiceType: domain.ServiceTypeDJ,
		StartTime:   start,
		EndTime:     end,
		Status:      domain.StatusConfirmed,
	}
}

func TestCheckDJConflicts_EmptyDay(t *testing.T) {
	err := checkConflicts(domain.ServiceTypeDJ, "14:00", "18:00", nil)
	assert.NoError(t, err)
}

func TestCheckDJConflicts_SecondAfterMorning(t *testing.T) {
	// Утреннее закончилось в 10:00, второе начинается в 14:00 - разрыв 240 минут
	existing := []*domain.Booking{djBooking("08:00", "10:00")}
	err := checkConflicts(domain.ServiceTypeDJ, "14:00", "18:00", existing)
	assert.NoError(t, err)
}

func TestCheckDJConflicts_GapTooSmall(t *testing.T) {
	// Утреннее закончилось в 10:00, второе в 12:00 - разрыв 120 минут, мало
	existing := []*domain.Booking{djBooking("08:00", "10:00")}
	err := checkConflicts(domain.ServiceTypeDJ, "12:00", "16:00", existing)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCheckDJConflicts_GapExactlyMinimum(t *testing.T) {
	// Ровно 180 минут - допустимо
	existing := []*domain.Booking{djBooking("08:00", "10:00")}
	err := checkConflicts(domain.ServiceTypeDJ, "13:00", "17:00", existing)
	assert.NoError(t, err)
}

func TestCheckDJConflicts_EveningOccupiesDay(t *testing.T) {
	// Существующее начинается после 11:00 - день занят целиком
	existing := []*domain.Booking{djBooking("14:00", "18:00")}
	err := checkConflicts(domain.ServiceTypeDJ, "08:00", "10:00", existing)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCheckDJConflicts_FirstEndsAfterCutoff(t *testing.T) {
	// Первое пересекает 11:00 - второго в этот день быть не может
	existing := []*domain.Booking{djBooking("10:00", "12:00")}
	err := checkConflicts(domain.ServiceTypeDJ, "16:00", "20:00", existing)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCheckDJConflicts_CapacityReached(t *testing.T) {
	existing := []*domain.Booking{
		djBooking("08:00", "10:00"),
		djBooking("14:00", "18:00"),
	}
	err := checkConflicts(domain.ServiceTypeDJ, "20:00", "22:00", existing)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCheckDJConflicts_NewBeforeExisting(t *testing.T) {
	// Новое раньше существующего утреннего: отрицательный разрыв - конфликт
	existing := []*domain.Booking{djBooking("09:00", "11:00")}
	err := checkConflicts(domain.ServiceTypeDJ, "07:00", "08:30", existing)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCheckUnitConflicts(t *testing.T) {
	err := checkConflicts(domain.ServiceTypePhotoboothUnit, "10:00", "20:00", nil)
	assert.NoError(t, err)

	existing := []*domain.Booking{{
		ProviderID:  "booth-1",
		ServiceType: domain.ServiceTypePhotoboothUnit,
		StartTime:   "09:00",
		EndTime:     "12:00",
	}}
	err = checkConflicts(domain.ServiceTypePhotoboothUnit, "15:00", "18:00", existing)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCalculatePrice(t *testing.T) {
	dj := &domain.Provider{Type: domain.ServiceTypeDJ, HourlyRate: 150}
	// 4 часа по 150
	assert.InDelta(t, 600, calculatePrice(dj, "14:00", "18:00"), 0.001)
	// 90 минут
	assert.InDelta(t, 225, calculatePrice(dj, "10:00", "11:30"), 0.001)

	booth := &domain.Provider{Type: domain.ServiceTypePhotoboothUnit, DailyRate: 400}
	assert.InDelta(t, 400, calculatePrice(booth, "10:00", "23:00"), 0.001)
}

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	// Прошедшая дата
	err := validateDate(time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), "10:00", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	// Сегодня, но время уже прошло
	err = validateDate(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), "10:00", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	// Сегодня, время ещё впереди
	err = validateDate(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), "18:00", now)
	assert.NoError(t, err)

	// Будущая дата
	err = validateDate(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), "10:00", now)
	assert.NoError(t, err)
}

func TestValidateRequest(t *testing.T) {
	valid := &Request{
		UserID:     1,
		ProviderID: "dj-main",
		EventDate:  time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "18:00",
	}
	require.NoError(t, validateRequest(valid))

	cases := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"missing user", func(r *Request) { r.UserID = 0 }},
		{"missing provider", func(r *Request) { r.ProviderID = "" }},
		{"missing date", func(r *Request) { r.EventDate = time.Time{} }},
		{"missing start", func(r *Request) { r.StartTime = "" }},
		{"bad time format", func(r *Request) { r.StartTime = "25:99" }},
		{"start after end", func(r *Request) { r.StartTime = "19:00" }},
		{"start equals end", func(r *Request) { r.StartTime = "18:00" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := *valid
			tc.mutate(&req)
			assert.ErrorIs(t, validateRequest(&req), ErrInvalidInput)
		})
	}
}
