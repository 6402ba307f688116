// Package calendar merges studio bookings, project milestones, task due
// dates and an optional external calendar into one month view.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"

	"golang.org/x/sync/errgroup"
)

const DefaultDayCap = 3

var ErrInvalidMonth = errors.New("month must be YYYY-MM")

// Range is an inclusive span of calendar days.
type Range struct {
	From time.Time
	To   time.Time
}

func MonthRange(year int, month time.Month) Range {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Range{From: from, To: from.AddDate(0, 1, -1)}
}

func ParseMonth(s string) (Range, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthRange(t.Year(), t.Month()), nil
}

func (r Range) Contains(day time.Time) bool {
	d := timeslot.DateOnly(day)
	return !d.Before(timeslot.DateOnly(r.From)) && !d.After(timeslot.DateOnly(r.To))
}

// Source produces calendar events for a range. A source owns exactly one
// EventSource kind.
type Source interface {
	Kind() models.EventSource
	Events(ctx context.Context, r Range) ([]models.CalendarEvent, error)
}

// TimeBoxed caps every Events call of src at d, on top of whatever
// deadline the aggregator applies.
func TimeBoxed(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return timeBoxed{Source: src, d: d}
}

type timeBoxed struct {
	Source
	d time.Duration
}

func (t timeBoxed) Events(ctx context.Context, r Range) ([]models.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Source.Events(ctx, r)
}

// Filters are inclusion gates per source.
type Filters struct {
	Studio   bool
	Project  bool
	Task     bool
	External bool
}

func AllSources() Filters {
	return Filters{Studio: true, Project: true, Task: true, External: true}
}

func (f Filters) Enabled(s models.EventSource) bool {
	switch s {
	case models.SourceStudio:
		return f.Studio
	case models.SourceProject:
		return f.Project
	case models.SourceTask:
		return f.Task
	case models.SourceExternal:
		return f.External
	}
	return false
}

type Aggregator struct {
	log     *slog.Logger
	sources []Source
	timeout time.Duration
}

// NewAggregator registers the long-lived sources. Per-request sources such
// as an external calendar are passed to Aggregate instead.
func NewAggregator(log *slog.Logger, sourceTimeout time.Duration, sources ...Source) *Aggregator {
	if sourceTimeout <= 0 {
		sourceTimeout = 5 * time.Second
	}
	return &Aggregator{log: log, sources: sources, timeout: sourceTimeout}
}

// Aggregate fetches every enabled source concurrently. A source that fails
// or times out is logged and contributes nothing. Events come back grouped
// by source order, then stable-sorted by day and start time.
func (a *Aggregator) Aggregate(ctx context.Context, r Range, f Filters, extra ...Source) []models.CalendarEvent {
	const op = "calendar.Aggregate"

	log := a.log.With(slog.String("op", op))

	sources := make([]Source, 0, len(a.sources)+len(extra))
	for _, src := range append(append([]Source{}, a.sources...), extra...) {
		if src != nil && f.Enabled(src.Kind()) {
			sources = append(sources, src)
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Kind().Rank() < sources[j].Kind().Rank()
	})

	results := make([][]models.CalendarEvent, len(sources))

	// goroutines never return an error so one source cannot cancel the rest
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			events, err := src.Events(sctx, r)
			if err != nil {
				log.Warn("calendar source failed", slog.String("source", string(src.Kind())), sl.Err(err))
				return nil
			}

			kept := make([]models.CalendarEvent, 0, len(events))
			for _, e := range events {
				if e.Source == src.Kind() && r.Contains(e.Date) {
					kept = append(kept, e)
				}
			}
			results[i] = kept
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.CalendarEvent, 0)
	for _, events := range results {
		out = append(out, events...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return eventLess(out[i], out[j])
	})

	return out
}

// eventLess orders by day, then start time. Untimed events open their day.
func eventLess(a, b models.CalendarEvent) bool {
	da, db := timeslot.DateOnly(a.Date), timeslot.DateOnly(b.Date)
	if !da.Equal(db) {
		return da.Before(db)
	}
	return startKey(a) < startKey(b)
}

func startKey(e models.CalendarEvent) int {
	if e.Start == nil {
		return -1
	}
	return int(*e.Start)
}

type DayBucket struct {
	Date   string                 `json:"date"`
	Events []models.CalendarEvent `json:"events"`
	Total  int                    `json:"total"`
	Hidden int                    `json:"hidden"`
}

// GroupByDay buckets already ordered events by exact day. Each bucket shows
// at most dayCap events and counts the rest as hidden.
func GroupByDay(events []models.CalendarEvent, dayCap int) []DayBucket {
	if dayCap <= 0 {
		dayCap = DefaultDayCap
	}

	buckets := make([]DayBucket, 0)
	index := make(map[string]int)

	for _, e := range events {
		day := e.DateString()
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, DayBucket{Date: day, Events: make([]models.CalendarEvent, 0, dayCap)})
		}

		b := &buckets[i]
		b.Total++
		if len(b.Events) < dayCap {
			b.Events = append(b.Events, e)
		} else {
			b.Hidden++
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})

	return buckets
}
