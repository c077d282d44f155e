package payments

import "errors"

var (
	// ErrRefundFailed возвращается, когда платежный шлюз не смог выполнить возврат
	// Эта ошибка никогда не откатывает уже зафиксированную отмену бронирования
	ErrRefundFailed = errors.New("payments: refund failed")
)
