package domain

import "time"

// AvailabilityBlock is an admin-imposed date exclusion independent of bookings
// A block always forces the date to be unavailable regardless of booking counts
type AvailabilityBlock struct {
	ID         int64
	ProviderID string
	BlockDate  time.Time
	Reason     string
	CreatedBy  int64
	CreatedAt  time.Time
}
