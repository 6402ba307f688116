package checkAvailability

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"studioBooker/internal/http-server/handlers/apierr"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/scheduling/reservation"
)

type AvailabilityRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string  `json:"end_time" validate:"required,datetime=15:04"`
	Kind      string  `json:"kind" validate:"required,oneof=photo_shoot video gallery_show rental other"`
	ItemIDs   []int64 `json:"item_ids" validate:"dive,gt=0"`
	ExcludeID int64   `json:"exclude_id,omitempty" validate:"gte=0"`
	IsBlocked bool    `json:"is_blocked"`
}

type AvailabilityResponse struct {
	response.Response
	reservation.Availability
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=AvailabilityChecker
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, req reservation.Request) (reservation.Availability, error)
}

func New(log *slog.Logger, checker AvailabilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.checkAvailability.New"

		log := log.With(slog.String("op", op))

		var req AvailabilityRequest

		err := render.DecodeJSON(r.Body, &req)
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

		date, err := timeslot.ParseDate(req.Date)
		if err != nil {
			apierr.Render(w, r, err, "failed to check availability")
			return
		}

		start, err := timeslot.ParseClock(req.StartTime)
		if err != nil {
			apierr.Render(w, r, err, "failed to check availability")
			return
		}

		end, err := timeslot.ParseClock(req.EndTime)
		if err != nil {
			apierr.Render(w, r, err, "failed to check availability")
			return
		}

		avail, err := checker.CheckAvailability(r.Context(), reservation.Request{
			Date:             date,
			Window:           timeslot.Window{Start: start, End: end},
			Kind:             models.BookingKind(req.Kind),
			ItemIDs:          req.ItemIDs,
			ExcludeBookingID: req.ExcludeID,
			Blocked:          req.IsBlocked,
		})
		if err != nil {
			log.Error("failed to check availability", sl.Err(err))
			apierr.Render(w, r, err, "failed to check availability")
			return
		}

		if avail.Unavailable == nil {
			avail.Unavailable = []int64{}
		}
		if avail.UnavailableNames == nil {
			avail.UnavailableNames = []string{}
		}

		if len(avail.Unavailable) > 0 {
			log.Info("equipment unavailable",
				slog.Any("unavailable", avail.Unavailable),
				slog.Bool("suggested", avail.Suggestion != nil),
			)
		}

		render.JSON(w, r, AvailabilityResponse{
			Response:     response.OK(),
			Availability: avail,
		})
	}
}
