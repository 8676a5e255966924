package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const secondsPerDay = 24 * 60 * 60

// LocalTime is a time of day with second precision.
//
// The search index stores it as milliseconds since midnight, which keeps
// documents written by older deployments readable.
type LocalTime struct {
	seconds int
}

// NewLocalTime returns the time of day hour:minute:second.
func NewLocalTime(hour, minute, second int) (LocalTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return LocalTime{}, fmt.Errorf("invalid time of day %02d:%02d:%02d", hour, minute, second)
	}
	return LocalTime{seconds: hour*3600 + minute*60 + second}, nil
}

// MustLocalTime is like ParseLocalTime but panics on malformed input.
func MustLocalTime(s string) LocalTime {
	t, err := ParseLocalTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseLocalTime accepts HH:MM and HH:MM:SS.
func ParseLocalTime(s string) (LocalTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewLocalTime(t.Hour(), t.Minute(), t.Second())
		}
	}
	return LocalTime{}, fmt.Errorf("invalid time of day %q: expected HH:MM or HH:MM:SS", s)
}

// LocalTimeFromMillis converts milliseconds since midnight.
func LocalTimeFromMillis(ms int64) (LocalTime, error) {
	if ms < 0 || ms >= secondsPerDay*1000 {
		return LocalTime{}, fmt.Errorf("time of day out of range: %dms", ms)
	}
	return LocalTime{seconds: int(ms / 1000)}, nil
}

func (t LocalTime) Hour() int   { return t.seconds / 3600 }
func (t LocalTime) Minute() int { return t.seconds / 60 % 60 }
func (t LocalTime) Second() int { return t.seconds % 60 }

// Millis returns the number of milliseconds since midnight.
func (t LocalTime) Millis() int64 { return int64(t.seconds) * 1000 }

func (t LocalTime) Before(o LocalTime) bool { return t.seconds < o.seconds }
func (t LocalTime) After(o LocalTime) bool  { return t.seconds > o.seconds }

// Compare returns -1, 0 or +1.
func (t LocalTime) Compare(o LocalTime) int {
	switch {
	case t.seconds < o.seconds:
		return -1
	case t.seconds > o.seconds:
		return 1
	}
	return 0
}

func (t LocalTime) String() string {
	if t.Second() == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalTime) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(t.Millis())
}

func (t *LocalTime) UnmarshalCBOR(data []byte) error {
	var ms int64
	if err := cbor.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("failed to unmarshal time of day: %w", err)
	}
	parsed, err := LocalTimeFromMillis(ms)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the time as HH:MM:SS so that string ordering matches time ordering.
func (t LocalTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second()), nil
}

func (t *LocalTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = LocalTime{}
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		*t = LocalTime{seconds: v.Hour()*3600 + v.Minute()*60 + v.Second()}
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into LocalTime", value)
	}
}

func (t *LocalTime) scanString(s string) error {
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (LocalTime) GormDataType() string { return "varchar(8)" }
