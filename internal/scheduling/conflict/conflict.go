// Package conflict decides whether a candidate studio window collides with
// existing bookings on the same day.
package conflict

import (
	"context"
	"fmt"
	"sort"
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
)

type Candidate struct {
	Date   time.Time
	Window timeslot.Window
	// ExcludeID skips the booking being updated. Zero excludes nothing.
	ExcludeID int64
}

type Result struct {
	HasConflict bool     `json:"has_conflict"`
	Conflicting []string `json:"conflicting"`
}

// Detect returns the display titles of every slot-occupying booking that
// overlaps the candidate, ordered by start time. It never mutates existing.
func Detect(existing []models.Booking, c Candidate) Result {
	hits := Overlapping(existing, c)

	titles := make([]string, 0, len(hits))
	for _, b := range hits {
		titles = append(titles, b.DisplayTitle())
	}

	return Result{
		HasConflict: len(titles) > 0,
		Conflicting: titles,
	}
}

// Overlapping returns the bookings behind a Detect result.
func Overlapping(existing []models.Booking, c Candidate) []models.Booking {
	var hits []models.Booking

	for _, b := range existing {
		if c.ExcludeID != 0 && b.ID == c.ExcludeID {
			continue
		}
		if !timeslot.SameDay(b.Date, c.Date) {
			continue
		}
		if !b.OccupiesSlot() {
			continue
		}
		if b.Window().Overlaps(c.Window) {
			hits = append(hits, b)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Start < hits[j].Start
	})

	return hits
}

type BookingLister interface {
	BookingsByDate(ctx context.Context, date time.Time) ([]models.Booking, error)
}

// Checker runs Detect against the bookings currently stored for the day.
type Checker struct {
	bookings BookingLister
}

func NewChecker(bookings BookingLister) *Checker {
	return &Checker{bookings: bookings}
}

func (c *Checker) Check(ctx context.Context, candidate Candidate) (Result, error) {
	const op = "scheduling.conflict.Check"

	existing, err := c.bookings.BookingsByDate(ctx, candidate.Date)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	return Detect(existing, candidate), nil
}
