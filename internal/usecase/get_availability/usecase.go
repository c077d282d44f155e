package get_availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

// UseCase use case построения карты доступности провайдера за месяц
// Кеш read-through: промах считается из БД и пишется обратно; ошибки
// кеша не фатальны, ответ в этом случае строится напрямую
type UseCase struct {
	bookingRepo  BookingRepository
	blockRepo    BlockRepository
	registry     ProviderRegistry
	cache        AvailabilityCache
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// cache может быть nil, если кеширование выключено
func NewUseCase(
	bookingRepo BookingRepository,
	blockRepo BlockRepository,
	registry ProviderRegistry,
	cache AvailabilityCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		blockRepo:    blockRepo,
		registry:     registry,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case построения карты доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Debug("GetAvailability: provider=%s, period=%04d-%02d", req.ProviderID, req.Year, req.Month)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	provider, err := uc.registry.Get(req.ProviderID)
	if err != nil {
		uc.logger.Warn("GetAvailability: provider %s not found", req.ProviderID)
		return nil, ErrProviderNotFound
	}

	// 1. Кеш
	if uc.cache != nil {
		data, hit, err := uc.cache.Get(ctx, req.ProviderID, req.Year, req.Month)
		if err != nil {
			uc.logger.Warn("GetAvailability: cache read failed: %v", err)
		} else if hit {
			var resp Response
			if err := json.Unmarshal(data, &resp); err == nil {
				uc.logger.Debug("GetAvailability: cache hit for %s %04d-%02d", req.ProviderID, req.Year, req.Month)
				return &resp, nil
			}
			uc.logger.Warn("GetAvailability: corrupt cache entry for %s %04d-%02d", req.ProviderID, req.Year, req.Month)
		}
	}

	// 2. Границы месяца
	monthStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	counts, err := uc.bookingRepo.CountActiveByDateForMonth(ctx, req.ProviderID, monthStart, monthEnd)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to count bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to count bookings: %w", ErrInternal, err)
	}

	blocks, err := uc.blockRepo.GetByProviderForPeriod(ctx, req.ProviderID, monthStart, monthEnd)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocks: %w", ErrInternal, err)
	}

	blockedDates := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		blockedDates[b.BlockDate.Format(domain.DateFormat)] = true
	}

	// 3. Карта по дням месяца
	capacity := provider.Type.DailyCapacity()

	// Граница "сегодня" по календарной дате часов сервиса, дни месяца - в UTC
	now := uc.timeProvider.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := make(map[string]DayStatus, monthEnd.Day())

	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DateFormat)
		booked := counts[key]
		blocked := blockedDates[key]

		remaining := capacity - booked
		if remaining < 0 {
			remaining = 0
		}

		// Прошедшие и заблокированные даты всегда недоступны
		available := !blocked && remaining > 0 && !d.Before(today)
		if blocked {
			remaining = 0
		}

		days[key] = DayStatus{
			Available:      available,
			Blocked:        blocked,
			BookedSlots:    booked,
			Capacity:       capacity,
			RemainingSlots: remaining,
		}
	}

	resp := &Response{
		ProviderID:  provider.ID,
		ServiceType: string(provider.Type),
		Year:        req.Year,
		Month:       req.Month,
		Days:        days,
	}

	// 4. Запись в кеш
	if uc.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := uc.cache.Set(ctx, req.ProviderID, req.Year, req.Month, data); err != nil {
				uc.logger.Warn("GetAvailability: cache write failed: %v", err)
			}
		}
	}

	return resp, nil
}
