package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Location is the service address snapshot stored as jsonb. It is frozen onto
// contracts at creation time so later edits to the engagement cannot change
// what the parties signed.
type Location struct {
	City     string  `json:"city"`
	District string  `json:"district,omitempty"`
	Street   string  `json:"street,omitempty"`
	Building string  `json:"building,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// Value marshals Location into a jsonb literal.
func (l Location) Value() (driver.Value, error) {
	if strings.TrimSpace(l.City) == "" {
		return nil, fmt.Errorf("location: missing city")
	}
	return json.Marshal(l)
}

// Scan decodes a jsonb column into Location.
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		*l = Location{}
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("location: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, l)
}

func toBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
