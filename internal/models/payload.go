package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RawPayload stores the original scraped values alongside the typed columns
// for debugging. It serializes to JSON text, which works on both PostgreSQL
// and the sqlite used in tests.
type RawPayload map[string]any

// Value implements driver.Valuer.
func (p RawPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (p *RawPayload) Scan(src any) error {
	if src == nil {
		*p = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("raw payload: unsupported source type %T", src)
	}
	if len(data) == 0 {
		*p = nil
		return nil
	}
	return json.Unmarshal(data, p)
}
