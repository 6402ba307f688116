package listBookings

import (
	"context"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/services/booking"
	"time"
)

type BookingsResponse struct {
	response.Response
	Date     string         `json:"date"`
	Bookings []booking.View `json:"bookings"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingLister
type BookingLister interface {
	ListByDate(ctx context.Context, date time.Time) ([]booking.View, error)
}

func New(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.listBookings.New"

		log := log.With(slog.String("op", op))

		raw := r.URL.Query().Get("date")
		if raw == "" {
			log.Error("date is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("date is required"))
			return
		}

		date, err := timeslot.ParseDate(raw)
		if err != nil {
			log.Error("invalid date format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("date must be YYYY-MM-DD"))
			return
		}

		views, err := lister.ListByDate(r.Context(), date)
		if err != nil {
			log.Error("failed to list bookings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list bookings"))
			return
		}

		if views == nil {
			views = []booking.View{}
		}

		log.Info("bookings listed", slog.String("date", raw), slog.Int("count", len(views)))

		render.JSON(w, r, BookingsResponse{
			Response: response.OK(),
			Date:     timeslot.FormatDate(date),
			Bookings: views,
		})
	}
}
