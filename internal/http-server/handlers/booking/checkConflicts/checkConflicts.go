package checkConflicts

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
	"studioBooker/internal/scheduling/conflict"
)

type ConflictRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	ExcludeID int64  `json:"exclude_id,omitempty" validate:"gte=0"`
}

type ConflictResponse struct {
	response.Response
	conflict.Result
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ConflictChecker
type ConflictChecker interface {
	CheckConflicts(ctx context.Context, c conflict.Candidate) (conflict.Result, error)
}

// New answers whether a window on a day collides with stored bookings.
// A collision is a normal answer, not an error.
func New(log *slog.Logger, checker ConflictChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.checkConflicts.New"

		log := log.With(slog.String("op", op))

		var req ConflictRequest

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

		candidate, err := req.candidate()
		if err != nil {
			log.Error("invalid window", sl.Err(err))
			apierr.Render(w, r, err, "failed to check conflicts")
			return
		}

		res, err := checker.CheckConflicts(r.Context(), candidate)
		if err != nil {
			log.Error("failed to check conflicts", sl.Err(err))
			apierr.Render(w, r, err, "failed to check conflicts")
			return
		}

		if res.Conflicting == nil {
			res.Conflicting = []string{}
		}

		render.JSON(w, r, ConflictResponse{
			Response: response.OK(),
			Result:   res,
		})
	}
}

func (req ConflictRequest) candidate() (conflict.Candidate, error) {
	date, err := timeslot.ParseDate(req.Date)
	if err != nil {
		return conflict.Candidate{}, err
	}

	start, err := timeslot.ParseClock(req.StartTime)
	if err != nil {
		return conflict.Candidate{}, err
	}

	end, err := timeslot.ParseClock(req.EndTime)
	if err != nil {
		return conflict.Candidate{}, err
	}

	return conflict.Candidate{
		Date:      date,
		Window:    timeslot.Window{Start: start, End: end},
		ExcludeID: req.ExcludeID,
	}, nil
}
