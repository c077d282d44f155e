package mark_paid

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/groovetime/booking-engine/internal/api/handlers"
	markPaid "github.com/groovetime/booking-engine/internal/usecase/mark_paid"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBookingID   = "некорректный идентификатор бронирования"
	msgBookingNotFound    = "бронирование не найдено"
	msgCannotConfirm      = "отмененное бронирование нельзя оплатить"
	msgRefMismatch        = "бронирование уже оплачено другим платежом"
)

type Handler struct {
	useCase MarkPaidUseCase
	logger  Logger
}

func NewHandler(useCase MarkPaidUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/mark-paid
// Вызывается платежным шлюзом, доставка может дублироваться
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req MarkPaidRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/%d/mark-paid - Invalid request body: %v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &markPaid.Request{
		BookingID:   bookingID,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, markPaid.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/%d/mark-paid - Booking not found", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, markPaid.ErrCannotConfirm):
			h.logger.Warn("POST /bookings/%d/mark-paid - Booking cancelled", bookingID)
			handlers.RespondConflict(w, msgCannotConfirm)

		case errors.Is(err, markPaid.ErrPaymentRefMismatch):
			h.logger.Warn("POST /bookings/%d/mark-paid - Payment ref mismatch", bookingID)
			handlers.RespondConflict(w, msgRefMismatch)

		case errors.Is(err, markPaid.ErrInvalidInput):
			h.logger.Warn("POST /bookings/%d/mark-paid - Invalid input: %v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings/%d/mark-paid - Failed: %v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/%d/mark-paid - Payment confirmed: status=%s, already_paid=%v",
		bookingID, result.Status, result.AlreadyPaid)
	handlers.RespondJSON(w, http.StatusOK, &MarkPaidResponse{
		BookingID:   result.BookingID,
		Status:      result.Status,
		AlreadyPaid: result.AlreadyPaid,
	})
}
