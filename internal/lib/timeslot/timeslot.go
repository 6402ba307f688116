// Package timeslot holds the day and clock-time primitives used by every
// scheduling check. Windows are half-open: [Start, End).
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	MinutesPerDay = 24 * 60
)

var (
	ErrInvalidClock    = errors.New("invalid clock time")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyWindow     = errors.New("end time must be after start time")
	ErrCrossesMidnight = errors.New("bookings spanning midnight are not supported")
)

// Clock is a time of day in minutes since midnight.
type Clock int

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock accepts "HH:MM" and "HH:MM:SS" (seconds must be zero).
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec != 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	return NewClock(h, m), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// On returns the instant of c on the given day in loc.
func (c Clock) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc)
}

// Window is a half-open interval of clock time on a single day.
type Window struct {
	Start Clock `json:"start_time"`
	End   Clock `json:"end_time"`
}

// NewWindow rejects empty windows and windows that wrap past midnight.
func NewWindow(start, end Clock) (Window, error) {
	switch {
	case start == end:
		return Window{}, ErrEmptyWindow
	case end < start:
		return Window{}, ErrCrossesMidnight
	}

	return Window{Start: start, End: end}, nil
}

// ParseWindow parses both ends and validates them with NewWindow.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}

	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}

	return NewWindow(s, e)
}

// Overlaps reports whether two half-open windows share any minute.
// Touching windows (w.End == o.Start) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

func (w Window) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Minute
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// ParseDate parses a YYYY-MM-DD calendar day into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateOnly keeps the calendar day of t as seen in t's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
