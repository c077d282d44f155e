package cancel_booking

// Request модель запроса отмены бронирования
type Request struct {
	BookingID int64  // ID бронирования
	ActorID   int64  // ID инициатора отмены
	ActorRole string // Роль инициатора (user | admin)
	Reason    string // Причина отмены (опционально)
}

// Response модель ответа
type Response struct {
	BookingID        int64
	Status           string
	RefundEligible   bool
	RefundPercentage int
	EstimatedRefund  float64
}

// cancelledEventPayload полезная нагрузка события booking.cancelled
type cancelledEventPayload struct {
	BookingID        int64   `json:"bookingId"`
	UserID           int64   `json:"userId"`
	ProviderID       string  `json:"providerId"`
	EventDate        string  `json:"eventDate"`
	CancelledBy      int64   `json:"cancelledBy"`
	CancelledByRole  string  `json:"cancelledByRole"`
	Reason           string  `json:"reason,omitempty"`
	RefundEligible   bool    `json:"refundEligible"`
	RefundPercentage int     `json:"refundPercentage"`
	EstimatedRefund  float64 `json:"estimatedRefund"`
}
