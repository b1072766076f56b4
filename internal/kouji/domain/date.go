package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage form of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date. The wrapped time is always midnight; only the
// year, month and day take part in comparisons.
type Date struct {
	time.Time
}

// NewDate builds a Date in loc (UTC when loc is nil).
func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// DateOf returns the calendar date t falls on in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day(), t.Location())
}

// ParseDate parses "2006-01-02" in loc.
func ParseDate(s string, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// In returns the same calendar date anchored in loc.
func (d Date) In(loc *time.Location) Date {
	if d.IsZero() {
		return d
	}
	return NewDate(d.Year(), d.Month(), d.Day(), loc)
}

// Compare returns -1, 0 or +1 comparing calendar dates, ignoring location.
func (d Date) Compare(o Date) int {
	dy, dm, dd := d.Date()
	oy, om, od := o.Date()
	switch {
	case dy != oy:
		return sign(dy - oy)
	case dm != om:
		return sign(int(dm) - int(om))
	default:
		return sign(dd - od)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d.Compare(o) == 0 }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddMonthsClamped adds calendar months, clamping the day to the length of
// the target month (Jan 31 + 3 months is Apr 30).
func AddMonthsClamped(d Date, months int) Date {
	if d.IsZero() {
		return d
	}
	year, month, day := d.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(first.Year(), first.Month(), d.Location()); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day, d.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "2006-01-02" and, for files written by older
// versions, full RFC 3339 timestamps. An empty value is the zero Date.
func (d *Date) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(s, time.UTC); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want %s", s, DateLayout)
	}
	*d = DateOf(t)
	return nil
}

// MarshalJSON and UnmarshalJSON shadow the ones promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Date{}
		return nil
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
	return d.UnmarshalText([]byte(s))
}
