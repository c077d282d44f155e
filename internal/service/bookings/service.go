package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/groovetime/booking-engine/internal/domain"
	bookingRepo "github.com/groovetime/booking-engine/internal/infra/storage/booking"
	"github.com/groovetime/booking-engine/internal/service/bookings/models"
)

// Service сервис чтения бронирований и административных переходов
type Service struct {
	bookingRepo BookingRepository
	outboxRepo  OutboxRepository
	registry    ProviderRegistry
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	registry ProviderRegistry,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		registry:    registry,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только свои бронирования, администратор - любые
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64, actorRole string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for actor=%d", id, actorID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	if domain.ActorRole(actorRole) != domain.RoleAdmin && booking.UserID != actorID {
		s.logger.Warn("GetByID: access denied for actor=%d to booking id=%d", actorID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Пользователь видит только свою историю, администратор - любую
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, actor=%d", req.UserID, req.ActorID)

	if domain.ActorRole(req.ActorRole) != domain.RoleAdmin && req.UserID != req.ActorID {
		s.logger.Warn("GetUserBookings: access denied for actor=%d to user=%d history", req.ActorID, req.UserID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования провайдера с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению отмененных
// Доступно только администраторам
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderBookings: fetching bookings for provider=%s", req.ProviderID)

	if domain.ActorRole(req.ActorRole) != domain.RoleAdmin {
		s.logger.Warn("GetProviderBookings: access denied, admin role required")
		return nil, ErrAccessDenied
	}

	if _, err := s.registry.Get(req.ProviderID); err != nil {
		s.logger.Warn("GetProviderBookings: provider %s not found", req.ProviderID)
		return nil, ErrProviderNotFound
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%s: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%s: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: fetched %d bookings for provider=%s", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// ListProviders возвращает каталог провайдеров из конфигурации
func (s *Service) ListProviders(ctx context.Context) *models.ProviderListResponse {
	return models.FromDomainProviderList(s.registry.List())
}

// MarkCompleted переводит подтвержденное бронирование в completed
// Доступно только администраторам
func (s *Service) MarkCompleted(ctx context.Context, bookingID int64, actorRole string) (*models.BookingResponse, error) {
	s.logger.Info("MarkCompleted: completing booking id=%d", bookingID)

	if domain.ActorRole(actorRole) != domain.RoleAdmin {
		s.logger.Warn("MarkCompleted: access denied, admin role required")
		return nil, ErrAccessDenied
	}

	var completed *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("MarkCompleted: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: MarkCompleted - repository error: %w", ErrInternal, err)
		}

		// Завершить можно только подтвержденное бронирование
		if !booking.CanBeCompleted() {
			s.logger.Warn("MarkCompleted: booking id=%d in status %s cannot be completed", bookingID, booking.Status)
			return ErrCannotComplete
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, domain.StatusCompleted); err != nil {
			s.logger.Error("MarkCompleted: failed to update booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: MarkCompleted - failed to update status: %w", ErrInternal, err)
		}

		payload, err := json.Marshal(map[string]interface{}{
			"bookingId":  booking.ID,
			"userId":     booking.UserID,
			"providerId": booking.ProviderID,
			"eventDate":  booking.EventDate.Format(domain.DateFormat),
		})
		if err != nil {
			return fmt.Errorf("%w: MarkCompleted - failed to marshal payload: %w", ErrInternal, err)
		}

		event := &domain.BookingEvent{
			BookingID: booking.ID,
			Type:      domain.EventBookingCompleted,
			Payload:   payload,
		}
		if err := s.outboxRepo.Insert(txCtx, event); err != nil {
			s.logger.Error("MarkCompleted: failed to insert outbox event: %v", err)
			return fmt.Errorf("%w: MarkCompleted - failed to insert outbox event: %w", ErrInternal, err)
		}

		booking.Status = domain.StatusCompleted
		completed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("MarkCompleted: booking id=%d completed", bookingID)
	return models.FromDomainBooking(completed), nil
}
