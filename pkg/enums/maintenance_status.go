package enums

import "fmt"

// MaintenanceStatus tracks a buyer-posted maintenance request.
type MaintenanceStatus string

const (
	MaintenanceStatusOpen      MaintenanceStatus = "open"
	MaintenanceStatusQuoted    MaintenanceStatus = "quoted"
	MaintenanceStatusAssigned  MaintenanceStatus = "assigned"
	MaintenanceStatusCompleted MaintenanceStatus = "completed"
	MaintenanceStatusCancelled MaintenanceStatus = "cancelled"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusOpen,
	MaintenanceStatusQuoted,
	MaintenanceStatusAssigned,
	MaintenanceStatusCompleted,
	MaintenanceStatusCancelled,
}

// String implements fmt.Stringer.
func (m MaintenanceStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaintenanceStatus.
func (m MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaintenanceStatus converts raw input into a MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}
