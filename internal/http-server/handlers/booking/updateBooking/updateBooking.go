package updateBooking

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"strconv"
	"studioBooker/internal/http-server/handlers/apierr"
	"studioBooker/internal/http-server/handlers/booking/bookingForm"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/services/booking"
)

type BookingResponse struct {
	response.Response
	booking.View
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingUpdater
type BookingUpdater interface {
	Update(ctx context.Context, id int64, in booking.Input) (booking.View, error)
}

// New replaces the schedule and details of a booking. Status and the
// blocked flag are kept; the status endpoint owns them.
func New(log *slog.Logger, updater BookingUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.updateBooking.New"

		log := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			log.Error("invalid booking id format", slog.String("id", chi.URLParam(r, "id")))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		log = log.With(slog.Int64("booking_id", id))

		var req bookingForm.Request

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		in, err := req.Input()
		if err != nil {
			log.Error("invalid booking form", sl.Err(err))
			apierr.Render(w, r, err, "failed to update booking")
			return
		}

		view, err := updater.Update(r.Context(), id, in)
		if err != nil {
			log.Error("failed to update booking", sl.Err(err))
			apierr.Render(w, r, err, "failed to update booking")
			return
		}

		log.Info("booking updated")

		render.JSON(w, r, BookingResponse{
			Response: response.OK(),
			View:     view,
		})
	}
}
