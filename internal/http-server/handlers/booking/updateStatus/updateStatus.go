package updateStatus

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
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/models"
	"studioBooker/internal/services/booking"
)

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed blocked"`
}

type StatusResponse struct {
	response.Response
	booking.View
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=StatusChanger
type StatusChanger interface {
	SetStatus(ctx context.Context, id int64, to models.BookingStatus) (booking.View, error)
}

func New(log *slog.Logger, changer StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.updateStatus.New"

		log := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			log.Error("invalid booking id format", slog.String("id", chi.URLParam(r, "id")))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		log = log.With(slog.Int64("booking_id", id))

		var req StatusRequest

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

		view, err := changer.SetStatus(r.Context(), id, models.BookingStatus(req.Status))
		if err != nil {
			log.Error("failed to change booking status", sl.Err(err))
			apierr.Render(w, r, err, "failed to change booking status")
			return
		}

		log.Info("booking status set", slog.String("status", req.Status))

		render.JSON(w, r, StatusResponse{
			Response: response.OK(),
			View:     view,
		})
	}
}
