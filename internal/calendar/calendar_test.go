package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"studioBooker/internal/lib/logger/handlers/slogdiscard"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	kind   models.EventSource
	events []models.CalendarEvent
	err    error
	block  bool
}

func (f *fakeSource) Kind() models.EventSource { return f.kind }

func (f *fakeSource) Events(ctx context.Context, _ Range) ([]models.CalendarEvent, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.events, f.err
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) *timeslot.Clock {
	c := timeslot.NewClock(h, m)
	return &c
}

func event(src models.EventSource, id string, d int, start *timeslot.Clock) models.CalendarEvent {
	return models.CalendarEvent{ID: id, Title: id, Date: day(d), Start: start, Source: src, Color: src.Color()}
}

func ids(events []models.CalendarEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func fixtureSources() []Source {
	return []Source{
		&fakeSource{kind: models.SourceTask, events: []models.CalendarEvent{
			event(models.SourceTask, "task-1", 3, nil),
			event(models.SourceTask, "task-2", 5, nil),
		}},
		&fakeSource{kind: models.SourceStudio, events: []models.CalendarEvent{
			event(models.SourceStudio, "booking-1", 3, clock(10, 0)),
			event(models.SourceStudio, "booking-2", 3, clock(9, 0)),
			event(models.SourceStudio, "booking-3", 7, clock(14, 0)),
		}},
		&fakeSource{kind: models.SourceProject, events: []models.CalendarEvent{
			event(models.SourceProject, "project-1", 3, nil),
		}},
	}
}

func TestMonthRange(t *testing.T) {
	t.Parallel()

	r := MonthRange(2024, time.February)
	assert.Equal(t, "2024-02-01", timeslot.FormatDate(r.From))
	assert.Equal(t, "2024-02-29", timeslot.FormatDate(r.To))
	assert.True(t, r.Contains(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	r, err := ParseMonth("2025-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", timeslot.FormatDate(r.To))

	_, err = ParseMonth("2025-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestAggregate_Order(t *testing.T) {
	t.Parallel()

	a := NewAggregator(slogdiscard.NewDiscardLogger(), time.Second, fixtureSources()...)

	got := a.Aggregate(context.Background(), MonthRange(2025, time.March), AllSources())

	assert.Equal(t, []string{
		"project-1", "task-1", "booking-2", "booking-1",
		"task-2",
		"booking-3",
	}, ids(got))
}

func TestAggregate_FilterRemovesExactlyThatSource(t *testing.T) {
	t.Parallel()

	a := NewAggregator(slogdiscard.NewDiscardLogger(), time.Second, fixtureSources()...)
	ctx := context.Background()
	r := MonthRange(2025, time.March)

	all := a.Aggregate(ctx, r, AllSources())

	for _, src := range models.Sources {
		t.Run(string(src), func(t *testing.T) {
			f := AllSources()
			switch src {
			case models.SourceStudio:
				f.Studio = false
			case models.SourceProject:
				f.Project = false
			case models.SourceTask:
				f.Task = false
			case models.SourceExternal:
				f.External = false
			}

			want := make([]string, 0)
			for _, e := range all {
				if e.Source != src {
					want = append(want, e.ID)
				}
			}

			assert.Equal(t, want, ids(a.Aggregate(ctx, r, f)))
		})
	}
}

func TestAggregate_UnionOfSingleSources(t *testing.T) {
	t.Parallel()

	a := NewAggregator(slogdiscard.NewDiscardLogger(), time.Second, fixtureSources()...)
	ctx := context.Background()
	r := MonthRange(2025, time.March)

	union := make(map[string]bool)
	for _, f := range []Filters{{Studio: true}, {Project: true}, {Task: true}, {External: true}} {
		for _, e := range a.Aggregate(ctx, r, f) {
			union[e.ID] = true
		}
	}

	all := a.Aggregate(ctx, r, AllSources())
	require.Len(t, all, len(union))
	for _, e := range all {
		assert.True(t, union[e.ID], e.ID)
	}
}

func TestAggregate_FailingSourceIsIsolated(t *testing.T) {
	t.Parallel()

	sources := append(fixtureSources(),
		&fakeSource{kind: models.SourceExternal, err: errors.New("token expired")},
	)
	a := NewAggregator(slogdiscard.NewDiscardLogger(), time.Second, sources...)

	got := a.Aggregate(context.Background(), MonthRange(2025, time.March), AllSources())
	assert.Len(t, got, 6)
}

func TestAggregate_SlowSourceTimesOut(t *testing.T) {
	t.Parallel()

	a := NewAggregator(slogdiscard.NewDiscardLogger(), 20*time.Millisecond, fixtureSources()...)

	got := a.Aggregate(context.Background(), MonthRange(2025, time.March), AllSources(),
		&fakeSource{kind: models.SourceExternal, block: true},
	)
	assert.Len(t, got, 6)
}

func TestAggregate_DropsOutOfRangeAndForeignEvents(t *testing.T) {
	t.Parallel()

	src := &fakeSource{kind: models.SourceExternal, events: []models.CalendarEvent{
		event(models.SourceExternal, "ext-in", 10, nil),
		{ID: "ext-april", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Source: models.SourceExternal},
		event(models.SourceStudio, "spoofed", 10, nil),
	}}
	a := NewAggregator(slogdiscard.NewDiscardLogger(), time.Second)

	got := a.Aggregate(context.Background(), MonthRange(2025, time.March), AllSources(), src)
	assert.Equal(t, []string{"ext-in"}, ids(got))

	got = a.Aggregate(context.Background(), MonthRange(2025, time.March), Filters{Studio: true}, src)
	assert.Empty(t, got)
}

func TestGroupByDay(t *testing.T) {
	t.Parallel()

	events := make([]models.CalendarEvent, 0)
	for i := 0; i < 5; i++ {
		events = append(events, event(models.SourceStudio, fmt.Sprintf("b-%d", i), 4, clock(8+i, 0)))
	}
	events = append(events, event(models.SourceTask, "t-1", 9, nil))

	buckets := GroupByDay(events, 0)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2025-03-04", buckets[0].Date)
	assert.Equal(t, []string{"b-0", "b-1", "b-2"}, ids(buckets[0].Events))
	assert.Equal(t, 5, buckets[0].Total)
	assert.Equal(t, 2, buckets[0].Hidden)

	assert.Equal(t, "2025-03-09", buckets[1].Date)
	assert.Equal(t, 0, buckets[1].Hidden)

	buckets = GroupByDay(events, 10)
	assert.Equal(t, 0, buckets[0].Hidden)
	assert.Len(t, buckets[0].Events, 5)

	assert.Empty(t, GroupByDay(nil, 3))
}

func TestTimeBoxed(t *testing.T) {
	t.Parallel()

	a := NewAggregator(slogdiscard.NewDiscardLogger(), time.Minute, fixtureSources()...)

	start := time.Now()
	got := a.Aggregate(context.Background(), MonthRange(2025, time.March), AllSources(),
		TimeBoxed(&fakeSource{kind: models.SourceExternal, block: true}, 20*time.Millisecond),
	)
	assert.Len(t, got, 6)
	assert.Less(t, time.Since(start), 30*time.Second)

	src := &fakeSource{kind: models.SourceTask}
	assert.Same(t, src, TimeBoxed(src, 0))
}
