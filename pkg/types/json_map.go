package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores an arbitrary jsonb object. Used for contract metadata
// snapshots and binding-terms payment schedules.
type JSONMap map[string]any

// Value marshals the map into a jsonb literal. A nil map encodes as an empty
// object rather than SQL NULL.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan decodes a jsonb column into the map.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("json map: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, m)
}
