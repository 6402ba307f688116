// Package status derives how a booking should be shown at a given moment.
// Nothing here is ever persisted.
package status

import (
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
)

type Display string

const (
	DisplayPending   Display = "pending"
	DisplayConfirmed Display = "confirmed"
	DisplayBlocked   Display = "blocked"
	DisplayUpcoming  Display = "upcoming"
	DisplayCompleted Display = "completed"
)

type Resolution struct {
	Stored     models.BookingStatus `json:"status"`
	Display    Display              `json:"display_status"`
	IsUpcoming bool                 `json:"is_upcoming"`
	IsPast     bool                 `json:"is_past"`
}

// Resolve compares the booking day with the calendar day of now, in now's
// location. Time of day is irrelevant.
func Resolve(b models.Booking, now time.Time) Resolution {
	today := timeslot.DateOnly(now)
	day := timeslot.DateOnly(b.Date)

	res := Resolution{Stored: b.Status}

	switch {
	case day.Before(today) && !b.Blocked():
		res.Display = DisplayCompleted
		res.IsPast = true
	case b.Blocked():
		res.Display = DisplayBlocked
		res.IsPast = day.Before(today)
	case b.Status == models.StatusConfirmed:
		res.Display = DisplayUpcoming
		res.IsUpcoming = true
	default:
		res.Display = fromStored(b.Status)
	}

	return res
}

func fromStored(s models.BookingStatus) Display {
	switch s {
	case models.StatusPending:
		return DisplayPending
	case models.StatusConfirmed:
		return DisplayConfirmed
	case models.StatusBlocked:
		return DisplayBlocked
	}
	return Display(s)
}

// Resolver pins the clock and studio time zone for callers that resolve
// many bookings in one request.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

func (r *Resolver) Resolve(b models.Booking) Resolution {
	return Resolve(b, r.Now())
}
