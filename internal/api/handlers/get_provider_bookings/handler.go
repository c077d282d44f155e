package get_provider_bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/groovetime/booking-engine/internal/api/handlers"
	"github.com/groovetime/booking-engine/internal/api/middleware"
	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/internal/service/bookings"
	"github.com/groovetime/booking-engine/internal/service/bookings/models"
)

const (
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFilter    = "некорректные параметры фильтрации"
	msgProviderNotFound = "провайдер не найден"
	msgAccessDenied     = "доступно только администраторам"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/bookings?startDate=&endDate=&status=&includeInactive=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorRole, _ := middleware.GetUserRole(r.Context())
	providerID := mux.Vars(r)["providerId"]

	query := r.URL.Query()
	req := &models.GetProviderBookingsRequest{
		ProviderID:      providerID,
		ActorRole:       actorRole,
		IncludeInactive: query.Get("includeInactive") == "true",
	}

	if raw := query.Get("startDate"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.StartDate = &parsed
	}
	if raw := query.Get("endDate"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.EndDate = &parsed
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetProviderBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /providers/%s/bookings - Access denied", providerID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, bookings.ErrProviderNotFound):
			h.logger.Warn("GET /providers/%s/bookings - Provider not found", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /providers/%s/bookings - Invalid filter: %v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /providers/%s/bookings - Failed: %v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
