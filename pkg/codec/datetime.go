package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// Seconds and the fraction are optional on input.
	localDateTimeLayout = "2006-01-02T15:04:05.999999999"
	localDateTimeShort  = "2006-01-02T15:04"
)

// LocalDateTime is a calendar date and wall-clock time without a zone.
type LocalDateTime struct {
	Date LocalDate
	Time LocalTime
}

// LocalDate is a calendar date without a zone.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// LocalTime is a wall-clock time of day without a zone.
type LocalTime struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// LocalDateTimeOf returns the calendar fields of t in its own location.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{Date: LocalDateOf(t), Time: LocalTimeOf(t)}
}

// LocalDateOf returns the date of t in its own location.
func LocalDateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// LocalTimeOf returns the time of day of t in its own location.
func LocalTimeOf(t time.Time) LocalTime {
	return LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

// In returns the instant at which dt occurs in loc.
func (dt LocalDateTime) In(loc *time.Location) time.Time {
	return time.Date(dt.Date.Year, dt.Date.Month, dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second, dt.Time.Nanosecond, loc)
}

// String formats dt as an ISO-8601 local date-time.
func (dt LocalDateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// DateTimeCodec converts between wire strings and LocalDateTime using a
// reference zone. Decoding accepts both zoned ("...Z") and zone-less input;
// encoding always emits a UTC instant, so a zone-less string does not survive
// a decode/encode round trip unchanged.
type DateTimeCodec struct {
	// Location is the zone local values are interpreted in. Nil means time.Local.
	Location *time.Location
}

func (c DateTimeCodec) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Decode parses s. Input ending in "Z" is read as an instant and converted to
// the local calendar value in the codec's zone.
func (c DateTimeCodec) Decode(s string) (LocalDateTime, error) {
	if strings.HasSuffix(s, "Z") {
		instant, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return LocalDateTime{}, fmt.Errorf("codec: parse instant %q: %w", s, err)
		}
		return LocalDateTimeOf(instant.In(c.location())), nil
	}

	t, err := time.Parse(localDateTimeLayout, s)
	if err != nil {
		var shortErr error
		if t, shortErr = time.Parse(localDateTimeShort, s); shortErr != nil {
			return LocalDateTime{}, fmt.Errorf("codec: parse local date-time %q: %w", s, err)
		}
	}
	return LocalDateTimeOf(t), nil
}

// Encode interprets dt in the codec's zone and formats the resulting instant
// in UTC.
func (c DateTimeCodec) Encode(dt LocalDateTime) string {
	return dt.In(c.location()).UTC().Format(time.RFC3339Nano)
}

// MarshalJSON encodes dt as an instant in time.Local.
func (dt LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(DateTimeCodec{}.Encode(dt))
}

// UnmarshalJSON decodes dt relative to time.Local.
func (dt *LocalDateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("codec: local date-time must be a string: %w", err)
	}
	parsed, err := DateTimeCodec{}.Decode(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// ParseLocalDate parses an ISO-8601 calendar date.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("codec: parse date %q: %w", s, err)
	}
	return LocalDateOf(t), nil
}

// String formats d as YYYY-MM-DD.
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *LocalDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("codec: date must be a string: %w", err)
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseLocalTime parses HH:MM, HH:MM:SS or HH:MM:SS.fraction.
func ParseLocalTime(s string) (LocalTime, error) {
	for _, layout := range []string{"15:04:05.999999999", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalTimeOf(t), nil
		}
	}
	return LocalTime{}, fmt.Errorf("codec: parse time %q: invalid format", s)
}

// String formats t as HH:MM, adding seconds and a fraction only when non-zero.
func (t LocalTime) String() string {
	s := fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	if t.Second == 0 && t.Nanosecond == 0 {
		return s
	}
	s += fmt.Sprintf(":%02d", t.Second)
	if t.Nanosecond == 0 {
		return s
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
	return s + "." + frac
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("codec: time must be a string: %w", err)
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
