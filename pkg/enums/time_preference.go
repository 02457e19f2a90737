package enums

import "fmt"

// TimePreference is the buyer's preferred visit window.
type TimePreference string

const (
	TimePreferenceMorning   TimePreference = "morning"
	TimePreferenceAfternoon TimePreference = "afternoon"
	TimePreferenceEvening   TimePreference = "evening"
	TimePreferenceAny       TimePreference = "any"
)

var validTimePreferences = []TimePreference{
	TimePreferenceMorning,
	TimePreferenceAfternoon,
	TimePreferenceEvening,
	TimePreferenceAny,
}

// String implements fmt.Stringer.
func (t TimePreference) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TimePreference.
func (t TimePreference) IsValid() bool {
	for _, candidate := range validTimePreferences {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimePreference converts raw input into a TimePreference.
func ParseTimePreference(value string) (TimePreference, error) {
	for _, candidate := range validTimePreferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid time preference %q", value)
}
