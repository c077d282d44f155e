package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/groovetime/booking-engine/internal/api/handlers"
	getAvailability "github.com/groovetime/booking-engine/internal/usecase/get_availability"
)

const (
	msgInvalidYear      = "некорректный параметр year"
	msgInvalidMonth     = "некорректный параметр month"
	msgInvalidInput     = "некорректные параметры запроса"
	msgProviderNotFound = "провайдер не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/availability?year=2026&month=6
// Год и месяц по умолчанию - текущие
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID := mux.Vars(r)["providerId"]

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	query := r.URL.Query()
	if raw := query.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /providers/%s/availability - Invalid year: %s", providerID, raw)
			handlers.RespondBadRequest(w, msgInvalidYear)
			return
		}
		year = parsed
	}
	if raw := query.Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /providers/%s/availability - Invalid month: %s", providerID, raw)
			handlers.RespondBadRequest(w, msgInvalidMonth)
			return
		}
		month = parsed
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		ProviderID: providerID,
		Year:       year,
		Month:      month,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrProviderNotFound):
			h.logger.Warn("GET /providers/%s/availability - Provider not found", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /providers/%s/availability - Invalid input: %v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /providers/%s/availability - Failed: %v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
