package mark_paid

// MarkPaidRequest HTTP request model колбэка платежного шлюза
type MarkPaidRequest struct {
	ExternalRef string `json:"externalRef"`
}

// MarkPaidResponse HTTP response model
type MarkPaidResponse struct {
	BookingID   int64  `json:"bookingId"`
	Status      string `json:"status"`
	AlreadyPaid bool   `json:"alreadyPaid"`
}
