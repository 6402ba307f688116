package createBooking

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	Create(ctx context.Context, in booking.Input) (booking.View, error)
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log := log.With(slog.String("op", op))

		var req bookingForm.Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.Any("request", req))

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
			apierr.Render(w, r, err, "failed to create booking")
			return
		}

		view, err := creator.Create(r.Context(), in)
		if err != nil {
			log.Error("failed to create booking", sl.Err(err))
			apierr.Render(w, r, err, "failed to create booking")
			return
		}

		log.Info("booking created", slog.Int64("id", view.Booking.ID))

		responseCreated(w, r, view)
	}
}

func responseCreated(w http.ResponseWriter, r *http.Request, view booking.View) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, BookingResponse{
		Response: response.OK(),
		View:     view,
	})
}
