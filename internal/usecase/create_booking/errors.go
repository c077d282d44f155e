package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrProviderNotFound возвращается, когда провайдер не найден в реестре
	ErrProviderNotFound = errors.New("create_booking: provider not found")

	// ErrInvalidDate возвращается для дат и времени в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateBlocked возвращается, когда дата заблокирована администратором
	ErrDateBlocked = errors.New("create_booking: date is blocked")

	// ErrSlotConflict возвращается, когда слот недоступен в момент коммита
	// (нарушение правил двойного бронирования или проигрыш гонки)
	ErrSlotConflict = errors.New("create_booking: slot conflict")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
