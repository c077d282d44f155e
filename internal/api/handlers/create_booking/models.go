package create_booking

import (
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
	createBooking "github.com/groovetime/booking-engine/internal/usecase/create_booking"
	"github.com/groovetime/booking-engine/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID string  `json:"providerId"`
	EventDate  string  `json:"eventDate"` // "2026-06-15"
	StartTime  string  `json:"startTime"` // "14:00"
	EndTime    string  `json:"endTime"`   // "18:00"
	Notes      *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	ProviderID    string  `json:"providerId"`
	ServiceType   string  `json:"serviceType"`
	EventDate     string  `json:"eventDate"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Status        string  `json:"status"`
	TotalPrice    float64 `json:"totalPrice"`
	PaymentStatus string  `json:"paymentStatus"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	eventDate, err := time.Parse(domain.DateFormat, r.EventDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:     userID,
		ProviderID: r.ProviderID,
		EventDate:  eventDate,
		StartTime:  startTime,
		EndTime:    endTime,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:            resp.ID,
		UserID:        resp.UserID,
		ProviderID:    resp.ProviderID,
		ServiceType:   resp.ServiceType,
		EventDate:     resp.EventDate.Format(domain.DateFormat),
		StartTime:     resp.StartTime.String(),
		EndTime:       resp.EndTime.String(),
		Status:        resp.Status,
		TotalPrice:    resp.TotalPrice,
		PaymentStatus: resp.PaymentStatus,
		Notes:         resp.Notes,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     resp.UpdatedAt.Format(time.RFC3339),
	}
}
