package getBooking

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"studioBooker/internal/http-server/handlers/apierr"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/services/booking"
)

type BookingResponse struct {
	response.Response
	booking.View
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingGetter
type BookingGetter interface {
	Get(ctx context.Context, id int64) (booking.View, error)
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getBooking.New"

		log := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			log.Error("invalid booking id format", slog.String("id", chi.URLParam(r, "id")))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		view, err := getter.Get(r.Context(), id)
		if err != nil {
			log.Error("failed to get booking", slog.Int64("booking_id", id), sl.Err(err))
			apierr.Render(w, r, err, "failed to get booking")
			return
		}

		render.JSON(w, r, BookingResponse{
			Response: response.OK(),
			View:     view,
		})
	}
}
