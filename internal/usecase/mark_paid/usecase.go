package mark_paid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/groovetime/booking-engine/internal/domain"
	bookingRepo "github.com/groovetime/booking-engine/internal/infra/storage/booking"
)

// UseCase use case подтверждения оплаты
// Идемпотентен по внешнему идентификатору платежа: платежный шлюз может
// доставлять колбэк повторно и не по порядку
type UseCase struct {
	bookingRepo BookingRepository
	outboxRepo  OutboxRepository
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute выполняет use case подтверждения оплаты
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("MarkPaid: booking=%d, external_ref=%s", req.BookingID, req.ExternalRef)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.ExternalRef == "" {
		return nil, fmt.Errorf("%w: externalRef is required", ErrInvalidInput)
	}

	var resp *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Бронирование блокируется (FOR UPDATE): переход атомарен
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("MarkPaid: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// Повторная доставка того же платежа - идемпотентный no-op
		if b.PaymentStatus == domain.PaymentPaid {
			if b.PaymentRef != nil && *b.PaymentRef == req.ExternalRef {
				uc.logger.Info("MarkPaid: duplicate delivery for booking id=%d, ref=%s", b.ID, req.ExternalRef)
				resp = &Response{BookingID: b.ID, Status: string(b.Status), AlreadyPaid: true}
				return nil
			}
			uc.logger.Warn("MarkPaid: booking id=%d already paid with different ref", b.ID)
			return ErrPaymentRefMismatch
		}

		// Оплата отмененного бронирования нарушила бы инвариант paid => confirmed
		if b.Status == domain.StatusCancelled {
			uc.logger.Warn("MarkPaid: booking id=%d is cancelled", b.ID)
			return ErrCannotConfirm
		}

		// pending -> confirmed; завершенное бронирование остается completed
		newStatus := domain.StatusConfirmed
		if b.Status == domain.StatusCompleted {
			newStatus = domain.StatusCompleted
		}

		if err := uc.bookingRepo.MarkPaid(txCtx, b.ID, req.ExternalRef, newStatus); err != nil {
			uc.logger.Error("MarkPaid: failed to mark booking id=%d paid: %v", b.ID, err)
			return fmt.Errorf("%w: failed to mark paid: %w", ErrInternal, err)
		}

		payload, err := json.Marshal(confirmedEventPayload{
			BookingID:   b.ID,
			UserID:      b.UserID,
			ProviderID:  b.ProviderID,
			ExternalRef: req.ExternalRef,
			TotalPrice:  b.TotalPrice,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to marshal event payload: %w", ErrInternal, err)
		}

		event := &domain.BookingEvent{
			BookingID: b.ID,
			Type:      domain.EventBookingConfirmed,
			Payload:   payload,
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("MarkPaid: failed to insert outbox event: %v", err)
			return fmt.Errorf("%w: failed to insert outbox event: %w", ErrInternal, err)
		}

		resp = &Response{BookingID: b.ID, Status: string(newStatus), AlreadyPaid: false}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if !resp.AlreadyPaid {
		uc.logger.Info("MarkPaid: booking id=%d confirmed (ref=%s)", resp.BookingID, req.ExternalRef)
	}

	return resp, nil
}
