package mark_paid

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("mark_paid: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("mark_paid: booking not found")

	// ErrCannotConfirm возвращается для отмененного бронирования:
	// оплаченное бронирование не может быть отмененным
	ErrCannotConfirm = errors.New("mark_paid: booking cannot be confirmed")

	// ErrPaymentRefMismatch возвращается, когда бронирование уже оплачено
	// с другим внешним идентификатором платежа
	ErrPaymentRefMismatch = errors.New("mark_paid: booking already paid with different payment ref")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("mark_paid: internal error")
)
