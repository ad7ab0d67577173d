package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// DateError reports an input that is neither a date nor an RFC3339 timestamp
type DateError struct {
	Field string
	Value string
}

func (e *DateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD or RFC3339", e.Value)
	}
	return fmt.Sprintf("invalid %s %q: expected YYYY-MM-DD or RFC3339", e.Field, e.Value)
}

// Date is a calendar day parsed from YYYY-MM-DD or RFC3339, stored as UTC midnight
type Date struct {
	time.Time
}

// Timestamp is an instant parsed from YYYY-MM-DD or RFC3339, stored in UTC
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(b []byte) error {
	t, ok, err := unmarshalTime(b)
	if err != nil || !ok {
		return err
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// Ptr returns nil for an unset date
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	t, ok, err := unmarshalTime(b)
	if err != nil || !ok {
		return err
	}
	ts.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

func unmarshalTime(b []byte) (time.Time, bool, error) {
	if bytes.Equal(b, []byte("null")) {
		return time.Time{}, false, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return time.Time{}, false, &DateError{Value: string(b)}
	}
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// ParseTime parses YYYY-MM-DD or RFC3339 and converts the result to UTC.
// A value carrying a non-UTC offset is logged at debug level when converted.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &DateError{Value: s}
	}
	if _, offset := t.Zone(); offset != 0 {
		logger.Debug("normalized timestamp to UTC",
			zap.String("input", s),
			zap.Time("utc", t.UTC()),
		)
	}
	return t.UTC(), nil
}

// ParseDateQuery parses an optional query value; empty yields nil
func ParseDateQuery(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseTime(value)
	if err != nil {
		return nil, &DateError{Field: name, Value: value}
	}
	return &t, nil
}
