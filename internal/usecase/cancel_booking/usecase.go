package cancel_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/groovetime/booking-engine/internal/domain"
	bookingRepo "github.com/groovetime/booking-engine/internal/infra/storage/booking"
)

// UseCase use case отмены бронирования
// Отмена и событие фиксируются в одной транзакции; возврат средств
// выполняется после коммита: сбой платежного провайдера не откатывает отмену
type UseCase struct {
	bookingRepo  BookingRepository
	outboxRepo   OutboxRepository
	payments     PaymentsClient
	txManager    TransactionManager
	cache        AvailabilityCache
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// cache может быть nil, если кеширование выключено
func NewUseCase(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	payments PaymentsClient,
	txManager TransactionManager,
	cache AvailabilityCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		outboxRepo:   outboxRepo,
		payments:     payments,
		txManager:    txManager,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d, actor=%d, role=%s", req.BookingID, req.ActorID, req.ActorRole)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	role := domain.ActorRole(req.ActorRole)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown actor role %q", ErrInvalidInput, req.ActorRole)
	}
	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := uc.timeProvider.Now()

	var (
		cancelled *domain.Booking
		decision  RefundDecision
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Бронирование блокируется (FOR UPDATE): конкурирующая отмена
		// или подтверждение оплаты сериализуются
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// Пользователь отменяет только свои бронирования
		if role != domain.RoleAdmin && b.UserID != req.ActorID {
			uc.logger.Warn("CancelBooking: actor %d is not the owner of booking %d", req.ActorID, b.ID)
			return ErrAccessDenied
		}

		if b.Status == domain.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if !b.CanBeCancelled() {
			uc.logger.Warn("CancelBooking: booking %d in status %s cannot be cancelled", b.ID, b.Status)
			return ErrCannotCancel
		}

		decision = evaluateRefund(b.EventStart(), now, role)

		if err := uc.bookingRepo.Cancel(txCtx, b.ID, req.Reason); err != nil {
			uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", b.ID, err)
			return fmt.Errorf("%w: failed to cancel booking: %w", ErrInternal, err)
		}

		payload, err := json.Marshal(cancelledEventPayload{
			BookingID:        b.ID,
			UserID:           b.UserID,
			ProviderID:       b.ProviderID,
			EventDate:        b.EventDate.Format(domain.DateFormat),
			CancelledBy:      req.ActorID,
			CancelledByRole:  string(role),
			Reason:           req.Reason,
			RefundEligible:   decision.Eligible,
			RefundPercentage: decision.Percentage,
			EstimatedRefund:  refundAmount(b.TotalPrice, decision),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to marshal event payload: %w", ErrInternal, err)
		}

		event := &domain.BookingEvent{
			BookingID: b.ID,
			Type:      domain.EventBookingCancelled,
			Payload:   payload,
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("CancelBooking: failed to insert outbox event: %v", err)
			return fmt.Errorf("%w: failed to insert outbox event: %w", ErrInternal, err)
		}

		cancelled = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking id=%d cancelled, refund=%d%%", cancelled.ID, decision.Percentage)

	// Возврат после коммита. Сбой только логируется: отмена уже состоялась,
	// возврат досылается вручную по логам
	if decision.Eligible && cancelled.PaymentStatus == domain.PaymentPaid && cancelled.PaymentRef != nil {
		uc.processRefund(ctx, cancelled, decision)
	}

	// Отмена немедленно освобождает слот, кеш месяца устарел
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, cancelled.ProviderID, cancelled.EventDate); err != nil {
			uc.logger.Warn("CancelBooking: cache invalidation failed: %v", err)
		}
	}

	return &Response{
		BookingID:        cancelled.ID,
		Status:           string(domain.StatusCancelled),
		RefundEligible:   decision.Eligible,
		RefundPercentage: decision.Percentage,
		EstimatedRefund:  refundAmount(cancelled.TotalPrice, decision),
	}, nil
}

// processRefund выполняет возврат средств и помечает бронирование refunded
func (uc *UseCase) processRefund(ctx context.Context, b *domain.Booking, decision RefundDecision) {
	amount := refundAmount(b.TotalPrice, decision)
	// Ключ идемпотентности из ID бронирования: повторный вызов безопасен
	idempotencyKey := fmt.Sprintf("refund-booking-%d", b.ID)

	if err := uc.payments.RefundPayment(ctx, *b.PaymentRef, amount, idempotencyKey); err != nil {
		uc.logger.Error("CancelBooking: refund failed for booking id=%d: %v", b.ID, err)
		return
	}

	if err := uc.bookingRepo.MarkRefunded(ctx, b.ID); err != nil {
		uc.logger.Error("CancelBooking: failed to mark booking id=%d refunded: %v", b.ID, err)
		return
	}

	uc.logger.Info("CancelBooking: refunded %.2f for booking id=%d", amount, b.ID)
}

func refundAmount(totalPrice float64, decision RefundDecision) float64 {
	return totalPrice * float64(decision.Percentage) / 100
}
