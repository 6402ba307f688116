// Package gcal reads a user's Google calendar with a token the client holds.
// Nothing read here is stored.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studioBooker/internal/calendar"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"

	"golang.org/x/oauth2"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	primaryCalendar = "primary"
	maxPages        = 4
)

var ErrNoToken = errors.New("external calendar token is empty")

type Source struct {
	svc *gcalendar.Service
	loc *time.Location
}

// New builds a read-only source for a single request. loc is the studio
// time zone used to place timed events on calendar days.
func New(ctx context.Context, accessToken string, loc *time.Location, opts ...option.ClientOption) (*Source, error) {
	if accessToken == "" {
		return nil, ErrNoToken
	}
	if loc == nil {
		loc = time.UTC
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts = append([]option.ClientOption{
		option.WithTokenSource(ts),
		option.WithScopes(gcalendar.CalendarReadonlyScope),
	}, opts...)

	svc, err := gcalendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Source{svc: svc, loc: loc}, nil
}

func (s *Source) Kind() models.EventSource { return models.SourceExternal }

func (s *Source) Events(ctx context.Context, r calendar.Range) ([]models.CalendarEvent, error) {
	from := time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, s.loc)
	to := time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)

	call := s.svc.Events.List(primaryCalendar).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)

	out := make([]models.CalendarEvent, 0)
	pages := 0

	err := call.Pages(ctx, func(page *gcalendar.Events) error {
		pages++
		for _, item := range page.Items {
			if e, ok := mapEvent(item, s.loc); ok {
				out = append(out, e)
			}
		}
		if pages >= maxPages {
			return errStopPaging
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return nil, fmt.Errorf("list external events: %w", err)
	}

	return out, nil
}

var errStopPaging = errors.New("stop paging")

func mapEvent(item *gcalendar.Event, loc *time.Location) (models.CalendarEvent, bool) {
	if item == nil || item.Status == "cancelled" || item.Start == nil {
		return models.CalendarEvent{}, false
	}

	title := item.Summary
	if title == "" {
		title = "Busy"
	}

	e := models.CalendarEvent{
		ID:       "external-" + item.Id,
		Title:    title,
		Source:   models.SourceExternal,
		Color:    models.SourceExternal.Color(),
		Editable: false,
		Payload:  map[string]any{"read_only": true},
	}

	if item.Start.Date != "" {
		d, err := timeslot.ParseDate(item.Start.Date)
		if err != nil {
			return models.CalendarEvent{}, false
		}
		e.Date = d
		return e, true
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return models.CalendarEvent{}, false
	}
	start = start.In(loc)
	e.Date = timeslot.DateOnly(start)

	sc := timeslot.NewClock(start.Hour(), start.Minute())
	e.Start = &sc

	if item.End != nil && item.End.DateTime != "" {
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err == nil {
			end = end.In(loc)
			if timeslot.SameDay(start, end) && end.After(start) {
				ec := timeslot.NewClock(end.Hour(), end.Minute())
				e.End = &ec
			}
		}
	}

	return e, true
}
