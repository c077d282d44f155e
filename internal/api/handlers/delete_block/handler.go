package delete_block

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/groovetime/booking-engine/internal/api/handlers"
	"github.com/groovetime/booking-engine/internal/api/middleware"
	"github.com/groovetime/booking-engine/internal/service/blocks"
	"github.com/groovetime/booking-engine/internal/service/blocks/models"
)

const (
	msgInvalidBlockID = "некорректный идентификатор блокировки"
	msgBlockNotFound  = "блокировка не найдена"
	msgAccessDenied   = "доступно только администраторам"
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

// Handle DELETE /api/v1/blocks/{blockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorRole, _ := middleware.GetUserRole(r.Context())

	blockID, err := strconv.ParseInt(mux.Vars(r)["blockId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	err = h.service.DeleteBlock(r.Context(), &models.DeleteBlockRequest{
		BlockID:   blockID,
		ActorRole: actorRole,
	})
	if err != nil {
		switch {
		case errors.Is(err, blocks.ErrBlockNotFound):
			h.logger.Warn("DELETE /blocks/%d - Block not found", blockID)
			handlers.RespondNotFound(w, msgBlockNotFound)

		case errors.Is(err, blocks.ErrAccessDenied):
			h.logger.Warn("DELETE /blocks/%d - Access denied", blockID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("DELETE /blocks/%d - Failed: %v", blockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /blocks/%d - Block deleted", blockID)
	w.WriteHeader(http.StatusNoContent)
}
