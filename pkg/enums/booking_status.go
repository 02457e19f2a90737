package enums

import "fmt"

// BookingStatus tracks a direct booking request between a buyer and a seller.
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusSellerResponded BookingStatus = "seller_responded"
	BookingStatusAccepted        BookingStatus = "accepted"
	BookingStatusRejected        BookingStatus = "rejected"
	BookingStatusCancelled       BookingStatus = "cancelled"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusSellerResponded,
	BookingStatusAccepted,
	BookingStatusRejected,
	BookingStatusCancelled,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
