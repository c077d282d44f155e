package create_block

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/groovetime/booking-engine/internal/api/handlers"
	"github.com/groovetime/booking-engine/internal/api/middleware"
	"github.com/groovetime/booking-engine/internal/domain"
	"github.com/groovetime/booking-engine/internal/service/blocks"
	"github.com/groovetime/booking-engine/internal/service/blocks/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgProviderNotFound   = "провайдер не найден"
	msgBlockExists        = "дата уже заблокирована"
	msgAccessDenied       = "доступно только администраторам"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	service BlockService
	logger  Logger
}

func NewHandler(service BlockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/providers/{providerId}/blocks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "отсутствует идентификация пользователя")
		return
	}
	actorRole, _ := middleware.GetUserRole(r.Context())
	providerID := mux.Vars(r)["providerId"]

	var req CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/%s/blocks - Invalid request body: %v", providerID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	blockDate, err := time.Parse(domain.DateFormat, req.BlockDate)
	if err != nil {
		h.logger.Warn("POST /providers/%s/blocks - Invalid date: %s", providerID, req.BlockDate)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.CreateBlock(r.Context(), &models.CreateBlockRequest{
		ProviderID: providerID,
		BlockDate:  blockDate,
		Reason:     req.Reason,
		ActorID:    actorID,
		ActorRole:  actorRole,
	})
	if err != nil {
		switch {
		case errors.Is(err, blocks.ErrAccessDenied):
			h.logger.Warn("POST /providers/%s/blocks - Access denied for actor=%d", providerID, actorID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, blocks.ErrProviderNotFound):
			h.logger.Warn("POST /providers/%s/blocks - Provider not found", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, blocks.ErrBlockExists):
			h.logger.Warn("POST /providers/%s/blocks - Block exists for date %s", providerID, req.BlockDate)
			handlers.RespondConflict(w, msgBlockExists)

		case errors.Is(err, blocks.ErrInvalidInput):
			h.logger.Warn("POST /providers/%s/blocks - Invalid input: %v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /providers/%s/blocks - Failed: %v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /providers/%s/blocks - Block created: id=%d, date=%s", providerID, result.ID, req.BlockDate)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
