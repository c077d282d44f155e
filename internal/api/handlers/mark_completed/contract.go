package mark_completed

import (
	"context"

	"github.com/groovetime/booking-engine/internal/service/bookings/models"
)

type BookingService interface {
	MarkCompleted(ctx context.Context, bookingID int64, actorRole string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
