package create_booking

import (
	"fmt"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.ProviderID == "" {
		return fmt.Errorf("%w: providerID is required", ErrInvalidInput)
	}

	if req.EventDate.IsZero() {
		return fmt.Errorf("%w: eventDate is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %w", ErrInvalidInput, err)
	}

	if err := req.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid endTime format: %w", ErrInvalidInput, err)
	}

	if !req.StartTime.IsBefore(req.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата и время начала не в прошлом
// Прошедшие даты всегда недоступны для бронирования
func validateDate(eventDate time.Time, startTime types.TimeString, now time.Time) error {
	if isDateInPast(eventDate, now) {
		return ErrInvalidDate
	}

	// Для сегодняшней даты время начала должно быть в будущем
	if isSameDay(eventDate, now) && !startTime.IsAfter(types.NewTimeString(now)) {
		return fmt.Errorf("%w: start time already passed", ErrInvalidDate)
	}

	return nil
}

// checkConflicts проверяет правила двойного бронирования для слота
// Вызывается строго внутри той же транзакции, что и вставка бронирования:
// existing прочитаны с FOR UPDATE, окна между проверкой и записью нет
func checkConflicts(serviceType domain.ServiceType, start, end types.TimeString, existing []*domain.Booking) error {
	switch serviceType {
	case domain.ServiceTypeDJ:
		return checkDJConflicts(start, end, existing)
	case domain.ServiceTypePhotoboothUnit:
		return checkUnitConflicts(existing)
	default:
		return fmt.Errorf("%w: unknown service type %q", ErrInternal, serviceType)
	}
}

// checkDJConflicts правила двойного бронирования диджея
// Диджей может взять второй заказ в день только если:
//   - первый закончился не позже 11:00 (утренний),
//   - второй начинается минимум через 180 минут после конца первого,
//   - в этот день нет бронирования, начинающегося после 11:00 (вечернее
//     занимает весь день целиком)
//
// Классификация идет по фактическим сохранённым временам, а не по метке
func checkDJConflicts(start, end types.TimeString, existing []*domain.Booking) error {
	if len(existing) == 0 {
		return nil
	}

	if len(existing) >= domain.DJDailyCapacity {
		return fmt.Errorf("%w: dj already has %d bookings on this date", ErrSlotConflict, len(existing))
	}

	first := existing[0]

	// Вечернее бронирование занимает весь день эксклюзивно
	if first.StartTime.IsAfter(domain.MorningCutoff) {
		return fmt.Errorf("%w: evening booking occupies the whole day", ErrSlotConflict)
	}

	// Второе бронирование возможно только после утреннего (конец не позже 11:00)
	if first.EndTime.IsAfter(domain.MorningCutoff) {
		return fmt.Errorf("%w: existing booking ends after %s", ErrSlotConflict, domain.MorningCutoff)
	}

	// Минимальный разрыв 180 минут после конца утреннего
	// Отрицательная разница (новое раньше существующего) тоже конфликт
	if start.Sub(first.EndTime) < domain.MinGapAfterMorningMinutes {
		return fmt.Errorf("%w: second booking must start at least %d minutes after the first ends",
			ErrSlotConflict, domain.MinGapAfterMorningMinutes)
	}

	return nil
}

// checkUnitConflicts правило фотобудки: один активный заказ на юнит в день
// Юниты - независимые ресурсы, вторая будка бронируется в тот же день свободно
func checkUnitConflicts(existing []*domain.Booking) error {
	if len(existing) > 0 {
		return fmt.Errorf("%w: photobooth unit already booked on this date", ErrSlotConflict)
	}
	return nil
}

// calculatePrice вычисляет стоимость бронирования
// Диджей оплачивается почасово, фотобудка - фиксированно за день
func calculatePrice(provider *domain.Provider, start, end types.TimeString) float64 {
	switch provider.Type {
	case domain.ServiceTypeDJ:
		minutes := end.Sub(start)
		return provider.HourlyRate * float64(minutes) / 60
	case domain.ServiceTypePhotoboothUnit:
		return provider.DailyRate
	default:
		return 0
	}
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
