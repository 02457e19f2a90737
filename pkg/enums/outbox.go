package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateContract           OutboxAggregateType = "contract"
	AggregateBookingRequest     OutboxAggregateType = "booking_request"
	AggregateQuoteSubmission    OutboxAggregateType = "quote_submission"
	AggregateMaintenanceRequest OutboxAggregateType = "maintenance_request"
	AggregateNotification       OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateContract,
	AggregateBookingRequest,
	AggregateQuoteSubmission,
	AggregateMaintenanceRequest,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventContractCreated       OutboxEventType = "contract_created"
	EventContractSigned        OutboxEventType = "contract_signed"
	EventContractExecuted      OutboxEventType = "contract_executed"
	EventContractWithdrawn     OutboxEventType = "contract_withdrawn"
	EventContractRejected      OutboxEventType = "contract_rejected"
	EventContractTermsUpdated  OutboxEventType = "contract_terms_updated"
	EventBookingCountered      OutboxEventType = "booking_countered"
	EventQuoteSubmitted        OutboxEventType = "quote_submitted"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventContractCreated,
	EventContractSigned,
	EventContractExecuted,
	EventContractWithdrawn,
	EventContractRejected,
	EventContractTermsUpdated,
	EventBookingCountered,
	EventQuoteSubmitted,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
