package deleteBooking

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
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingDeleter
type BookingDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// New removes a booking. Its equipment reservations go with it.
func New(log *slog.Logger, deleter BookingDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.deleteBooking.New"

		log := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			log.Error("invalid booking id format", slog.String("id", chi.URLParam(r, "id")))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		if err = deleter.Delete(r.Context(), id); err != nil {
			log.Error("failed to delete booking", slog.Int64("booking_id", id), sl.Err(err))
			apierr.Render(w, r, err, "failed to delete booking")
			return
		}

		log.Info("booking deleted", slog.Int64("booking_id", id))

		render.JSON(w, r, response.OK())
	}
}
