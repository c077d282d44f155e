package list_providers

import (
	"context"

	"github.com/groovetime/booking-engine/internal/service/bookings/models"
)

type BookingService interface {
	ListProviders(ctx context.Context) *models.ProviderListResponse
}

type Logger interface {
	Info(format string, v ...interface{})
}
