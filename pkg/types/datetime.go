package types

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the wire and storage format of LocalDateTime.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// Layouts accepted when parsing, in order of preference.
var localDateTimeLayouts = []string{
	LocalDateTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// LocalDateTime is a date and time without a zone, such as the moment an
// article was added. The wrapped time is always in UTC.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime returns t's wall clock as a LocalDateTime.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// ParseLocalDateTime parses an ISO-8601 local date-time such as
// "2022-01-03T00:10:00".
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range localDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalDateTime{t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid local date-time %q (want %s)", s, LocalDateTimeLayout)
}

// String formats the value with LocalDateTimeLayout. Zero values format as "".
func (d LocalDateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(LocalDateTimeLayout)
}

func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(LocalDateTimeLayout) + `"`), nil
}

func (d *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = LocalDateTime{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("local date-time must be a JSON string, got %s", data)
	}
	parsed, err := ParseLocalDateTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; values are stored as TEXT.
func (d LocalDateTime) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(LocalDateTimeLayout), nil
}

// Scan implements sql.Scanner.
func (d *LocalDateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = LocalDateTime{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = NewLocalDateTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into LocalDateTime", src)
	}
}

func (d *LocalDateTime) scanString(s string) error {
	if s == "" {
		*d = LocalDateTime{}
		return nil
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
