package entity

import (
	"database/sql/driver"
	"fmt"
)

// ScheduleDocument holds a physician's weekly availability as stored JSONB,
// e.g. {"monday": ["09:00-12:00"]}. It is kept raw so a corrupted document
// can still be loaded and reported instead of failing the whole row.
type ScheduleDocument []byte

// Value implements driver.Valuer
func (d ScheduleDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

// Scan implements sql.Scanner
func (d *ScheduleDocument) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append(ScheduleDocument(nil), v...)
	case string:
		*d = ScheduleDocument(v)
	default:
		return fmt.Errorf("failed to scan schedule document: unsupported type %T", value)
	}
	return nil
}
