package mark_paid

// Request модель запроса подтверждения оплаты от платежного шлюза
type Request struct {
	BookingID   int64  // ID бронирования
	ExternalRef string // Внешний идентификатор платежа (ключ идемпотентности)
}

// Response модель ответа
// AlreadyPaid=true означает повторную доставку того же платежа:
// переход и событие не дублируются
type Response struct {
	BookingID   int64
	Status      string
	AlreadyPaid bool
}

// confirmedEventPayload полезная нагрузка события booking.confirmed
type confirmedEventPayload struct {
	BookingID   int64   `json:"bookingId"`
	UserID      int64   `json:"userId"`
	ProviderID  string  `json:"providerId"`
	ExternalRef string  `json:"externalRef"`
	TotalPrice  float64 `json:"totalPrice"`
}
