package create_booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/pkg/txmanager"
)

// UseCase use case создания бронирования
// Проверка конфликтов и запись выполняются в одной сериализуемой транзакции:
// два конкурирующих запроса на один слот дают ровно один успех и один конфликт
type UseCase struct {
	bookingRepo  BookingRepository
	blockRepo    BlockRepository
	outboxRepo   OutboxRepository
	registry     ProviderRegistry
	txManager    TransactionManager
	cache        AvailabilityCache
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// cache может быть nil, если кеширование выключено
func NewUseCase(
	bookingRepo BookingRepository,
	blockRepo BlockRepository,
	outboxRepo OutboxRepository,
	registry ProviderRegistry,
	txManager TransactionManager,
	cache AvailabilityCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		blockRepo:    blockRepo,
		outboxRepo:   outboxRepo,
		registry:     registry,
		txManager:    txManager,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, provider=%s, date=%s, time=%s-%s",
		req.UserID, req.ProviderID, req.EventDate.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Провайдер из реестра; конкретный тип определяет правила вместимости
	provider, err := uc.registry.Get(req.ProviderID)
	if err != nil {
		uc.logger.Warn("CreateBooking: provider %s not found", req.ProviderID)
		return nil, ErrProviderNotFound
	}

	// 3. Прошедшие даты всегда недоступны
	now := uc.timeProvider.Now()
	if err := validateDate(req.EventDate, req.StartTime, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	totalPrice := calculatePrice(provider, req.StartTime, req.EndTime)

	var result *domain.Booking

	// 4. Проверка конфликтов и запись - одна атомарная единица
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Административная блокировка всегда делает дату недоступной
		blocked, err := uc.blockRepo.ExistsForDate(txCtx, req.ProviderID, req.EventDate)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to check blocks: %v", err)
			return fmt.Errorf("%w: failed to check blocks: %w", ErrInternal, err)
		}
		if blocked {
			uc.logger.Warn("CreateBooking: date %s is blocked for provider %s",
				req.EventDate.Format(domain.DateFormat), req.ProviderID)
			return ErrDateBlocked
		}

		// 4.2. Активные бронирования даты читаются с блокировкой (FOR UPDATE)
		existing, err := uc.bookingRepo.GetActiveByProviderAndDate(txCtx, req.ProviderID, req.EventDate)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		// 4.3. Правила двойного бронирования
		if err := checkConflicts(provider.Type, req.StartTime, req.EndTime, existing); err != nil {
			uc.logger.Warn("CreateBooking: conflict for provider %s on %s: %v",
				req.ProviderID, req.EventDate.Format(domain.DateFormat), err)
			return err
		}

		// 4.4. Бронирование и его слот создаются вместе
		booking := &domain.Booking{
			UserID:        req.UserID,
			ProviderID:    provider.ID,
			ServiceType:   provider.Type,
			EventDate:     req.EventDate,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			Status:        domain.StatusPending,
			TotalPrice:    totalPrice,
			PaymentStatus: domain.PaymentPending,
			Notes:         req.Notes,
		}

		slot := &domain.TimeSlot{
			ProviderID: provider.ID,
			SlotDate:   req.EventDate,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			SlotType:   domain.ClassifySlot(provider.Type, req.StartTime, req.EndTime),
		}

		created, err := uc.bookingRepo.Create(txCtx, booking, []*domain.TimeSlot{slot})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 4.5. Lifecycle-событие в той же транзакции: ровно одно на переход
		payload, err := json.Marshal(createdEventPayload{
			BookingID:   created.ID,
			UserID:      created.UserID,
			ProviderID:  created.ProviderID,
			ServiceType: string(created.ServiceType),
			EventDate:   created.EventDate.Format(domain.DateFormat),
			StartTime:   created.StartTime.String(),
			EndTime:     created.EndTime.String(),
			TotalPrice:  created.TotalPrice,
			Status:      string(created.Status),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to marshal event payload: %w", ErrInternal, err)
		}

		event := &domain.BookingEvent{
			BookingID: created.ID,
			Type:      domain.EventBookingCreated,
			Payload:   payload,
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("CreateBooking: failed to insert outbox event: %v", err)
			return fmt.Errorf("%w: failed to insert outbox event: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Проигрыш гонки за слот проявляется как serialization failure
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateBooking: lost slot race for provider %s on %s",
				req.ProviderID, req.EventDate.Format(domain.DateFormat))
			return nil, fmt.Errorf("%w: concurrent booking won the slot", ErrSlotConflict)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	// 5. Инвалидация кеша доступности после коммита
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, result.ProviderID, result.EventDate); err != nil {
			uc.logger.Warn("CreateBooking: cache invalidation failed: %v", err)
		}
	}

	return &Response{
		ID:            result.ID,
		UserID:        result.UserID,
		ProviderID:    result.ProviderID,
		ServiceType:   string(result.ServiceType),
		EventDate:     result.EventDate,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		Status:        string(result.Status),
		TotalPrice:    result.TotalPrice,
		PaymentStatus: string(result.PaymentStatus),
		Notes:         result.Notes,
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}
