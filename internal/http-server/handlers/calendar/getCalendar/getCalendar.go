package getCalendar

import (
	"context"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"studioBooker/internal/calendar"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"time"
)

// TokenHeader carries the client's own external calendar credential. It is
// used for the one request and never stored.
const TokenHeader = "X-External-Calendar-Token"

type CalendarResponse struct {
	response.Response
	Month      string                 `json:"month"`
	RangeStart string                 `json:"range_start"`
	RangeEnd   string                 `json:"range_end"`
	Events     []models.CalendarEvent `json:"events"`
	Days       []calendar.DayBucket   `json:"days"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventAggregator
type EventAggregator interface {
	Aggregate(ctx context.Context, r calendar.Range, f calendar.Filters, extra ...calendar.Source) []models.CalendarEvent
}

// ExternalFactory builds a read-only source from a client token.
type ExternalFactory func(ctx context.Context, token string) (calendar.Source, error)

type Options struct {
	External ExternalFactory
	DayCap   int
	// Now picks the month when none is requested.
	Now func() time.Time
}

func New(log *slog.Logger, aggregator EventAggregator, opts Options) http.HandlerFunc {
	if opts.DayCap <= 0 {
		opts.DayCap = calendar.DefaultDayCap
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.getCalendar.New"

		log := log.With(slog.String("op", op))

		q := r.URL.Query()

		month := q.Get("month")
		if month == "" {
			month = opts.Now().Format("2006-01")
		}

		rng, err := calendar.ParseMonth(month)
		if err != nil {
			log.Error("invalid month", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(calendar.ErrInvalidMonth.Error()))
			return
		}

		filters := calendar.AllSources()
		for name, gate := range map[string]*bool{
			"studio":   &filters.Studio,
			"project":  &filters.Project,
			"task":     &filters.Task,
			"external": &filters.External,
		} {
			raw := q.Get(name)
			if raw == "" {
				continue
			}
			on, err := strconv.ParseBool(raw)
			if err != nil {
				log.Error("invalid source filter", slog.String("filter", name), sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("filter "+name+" must be true or false"))
				return
			}
			*gate = on
		}

		dayCap := opts.DayCap
		if raw := q.Get("cap"); raw != "" {
			dayCap, err = strconv.Atoi(raw)
			if err != nil || dayCap <= 0 {
				log.Error("invalid day cap", slog.String("cap", raw))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("cap must be a positive integer"))
				return
			}
		}

		var extra []calendar.Source
		if token := r.Header.Get(TokenHeader); token != "" && filters.External && opts.External != nil {
			src, err := opts.External(r.Context(), token)
			if err != nil {
				log.Warn("external calendar unavailable", sl.Err(err))
			} else {
				extra = append(extra, src)
			}
		}

		events := aggregator.Aggregate(r.Context(), rng, filters, extra...)
		if events == nil {
			events = []models.CalendarEvent{}
		}

		log.Info("calendar aggregated",
			slog.String("month", month),
			slog.Int("events", len(events)),
			slog.Bool("external", len(extra) > 0),
		)

		render.JSON(w, r, CalendarResponse{
			Response:   response.OK(),
			Month:      month,
			RangeStart: timeslot.FormatDate(rng.From),
			RangeEnd:   timeslot.FormatDate(rng.To),
			Events:     events,
			Days:       calendar.GroupByDay(events, dayCap),
		})
	}
}
