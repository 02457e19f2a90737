package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeContractCreated   NotificationType = "contract_created"
	NotificationTypeContractSigned    NotificationType = "contract_signed"
	NotificationTypeContractExecuted  NotificationType = "contract_executed"
	NotificationTypeContractWithdrawn NotificationType = "contract_withdrawn"
	NotificationTypeContractRejected  NotificationType = "contract_rejected"
	NotificationTypeTermsUpdated      NotificationType = "terms_updated"
	NotificationTypeBookingResponse   NotificationType = "booking_response"
	NotificationTypeQuoteReceived     NotificationType = "quote_received"
	NotificationTypeSystemAlert       NotificationType = "system_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeContractCreated,
	NotificationTypeContractSigned,
	NotificationTypeContractExecuted,
	NotificationTypeContractWithdrawn,
	NotificationTypeContractRejected,
	NotificationTypeTermsUpdated,
	NotificationTypeBookingResponse,
	NotificationTypeQuoteReceived,
	NotificationTypeSystemAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
