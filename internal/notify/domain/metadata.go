package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is the payload copy persisted alongside a notification, stored as
// jsonb so clients can deep-link without another round trip.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
	return json.Unmarshal(raw, m)
}
