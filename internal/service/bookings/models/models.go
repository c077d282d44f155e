package models

import (
	"errors"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID    int64   `json:"userId"`
	ActorID   int64   `json:"actorId"`
	ActorRole string  `json:"actorRole"`
	Status    *string `json:"status,omitempty"`
}

// GetProviderBookingsRequest запрос на получение бронирований провайдера
type GetProviderBookingsRequest struct {
	ProviderID      string     `json:"providerId"`
	ActorRole       string     `json:"actorRole"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отмененные бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID:      r.ProviderID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	ProviderID  string `json:"providerId"`
	ServiceType string `json:"serviceType"`
	EventDate   string `json:"eventDate"` // "2026-06-15"
	StartTime   string `json:"startTime"` // "14:00"
	EndTime     string `json:"endTime"`   // "18:00"
	Status      string `json:"status"`

	TotalPrice    float64 `json:"totalPrice"`
	PaymentStatus string  `json:"paymentStatus"`
	PaymentRef    *string `json:"paymentRef,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		ProviderID:         b.ProviderID,
		ServiceType:        string(b.ServiceType),
		EventDate:          b.EventDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		Status:             string(b.Status),
		TotalPrice:         b.TotalPrice,
		PaymentStatus:      string(b.PaymentStatus),
		PaymentRef:         b.PaymentRef,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ProviderResponse ответ с данными провайдера
type ProviderResponse struct {
	ID          string  `json:"id"`
	ServiceType string  `json:"serviceType"`
	Name        string  `json:"name"`
	HourlyRate  float64 `json:"hourlyRate,omitempty"`
	DailyRate   float64 `json:"dailyRate,omitempty"`
}

// ProviderListResponse ответ со списком провайдеров
type ProviderListResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

// FromDomainProviderList конвертирует список провайдеров в DTO
func FromDomainProviderList(providers []*domain.Provider) *ProviderListResponse {
	resp := &ProviderListResponse{
		Providers: make([]ProviderResponse, len(providers)),
	}
	for i, p := range providers {
		resp.Providers[i] = ProviderResponse{
			ID:          p.ID,
			ServiceType: string(p.Type),
			Name:        p.Name,
			HourlyRate:  p.HourlyRate,
			DailyRate:   p.DailyRate,
		}
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCancelled,
		domain.StatusCompleted,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
