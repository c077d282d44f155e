package cancel_booking

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID        int64   `json:"bookingId"`
	Status           string  `json:"status"`
	RefundEligible   bool    `json:"refundEligible"`
	RefundPercentage int     `json:"refundPercentage"`
	EstimatedRefund  float64 `json:"estimatedRefund"`
}
