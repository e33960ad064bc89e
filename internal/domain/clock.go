package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrTimeOverflow      = errors.New("time overflows past midnight")
)

type ClockStyle string

const (
	Clock24Hour ClockStyle = "24h"
	Clock12Hour ClockStyle = "12h"
)

type DateStyle string

const (
	DateISO      DateStyle = "iso"
	DateDayFirst DateStyle = "day-first"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time with minute precision, always local to the
// provider's timezone. It carries no date and no offset.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:MM" 24-hour and "h:mm AM/PM" 12-hour strings.
// Anything else fails with ErrInvalidTimeFormat; there is no silent default.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	v := strings.TrimSpace(s)
	if t, err := time.Parse("15:04", v); err == nil {
		return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
	}
	upper := strings.ToUpper(v)
	for _, layout := range []string{"3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, upper); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
}

func (t TimeOfDay) Format(style ClockStyle) string {
	if style == Clock12Hour {
		suffix := "AM"
		hour := t.Hour
		if hour >= 12 {
			suffix = "PM"
		}
		hour = hour % 12
		if hour == 0 {
			hour = 12
		}
		return fmt.Sprintf("%d:%02d %s", hour, t.Minute, suffix)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) String() string {
	return t.Format(Clock24Hour)
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Compare(other TimeOfDay) int {
	switch {
	case t.Minutes() < other.Minutes():
		return -1
	case t.Minutes() > other.Minutes():
		return 1
	default:
		return 0
	}
}

// AddMinutes advances the clock within the same day. Crossing midnight is
// reported as ErrTimeOverflow; slots never span two calendar days.
func (t TimeOfDay) AddMinutes(n int) (TimeOfDay, error) {
	total := t.Minutes() + n
	if total < 0 || total >= minutesPerDay {
		return TimeOfDay{}, ErrTimeOverflow
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}, nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(Clock24Hour))
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeFormat, data)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.Format(Clock24Hour), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = TimeOfDay{Hour: v.Hour(), Minute: v.Minute()}
		return nil
	case nil:
		*t = TimeOfDay{}
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into TimeOfDay", ErrInvalidTimeFormat, src)
	}
}

// CalendarDate is a provider-local calendar date without time or offset.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate accepts ISO "YYYY-MM-DD" and day-first "DD/MM/YYYY".
// Slash-delimited dates are always read day-first; this is a locale
// convention fixed here, never auto-detected from the values.
func ParseCalendarDate(s string) (CalendarDate, error) {
	v := strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return DateOf(t), nil
	}
	if strings.Contains(v, "/") {
		if t, err := time.Parse("02/01/2006", v); err == nil {
			return DateOf(t), nil
		}
	}
	return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

// DateOf truncates a time.Time to its calendar date in its own location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// TimeOfDayOf truncates a time.Time to its wall-clock time in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// At anchors the date at a wall-clock time in loc.
func (d CalendarDate) At(t TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// DayOfWeek returns 0=Sunday .. 6=Saturday.
func (d CalendarDate) DayOfWeek() int {
	return int(d.At(TimeOfDay{}, time.UTC).Weekday())
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.At(TimeOfDay{}, time.UTC).AddDate(0, 0, n))
}

func (d CalendarDate) Compare(other CalendarDate) int {
	a := d.At(TimeOfDay{}, time.UTC)
	b := other.At(TimeOfDay{}, time.UTC)
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func (d CalendarDate) Format(style DateStyle) string {
	if style == DateDayFirst {
		return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d CalendarDate) String() string {
	return d.Format(DateISO)
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateISO))
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDateFormat, data)
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d CalendarDate) Value() (driver.Value, error) {
	return d.At(TimeOfDay{}, time.UTC), nil
}

func (d *CalendarDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseCalendarDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		*d = CalendarDate{}
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into CalendarDate", ErrInvalidDateFormat, src)
	}
}
