// Package apierr maps domain errors to HTTP responses shared by the
// booking handlers.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/scheduling/reservation"
	"studioBooker/internal/services/booking"
	"studioBooker/internal/storage"

	"github.com/go-chi/render"
)

// ConflictResponse carries the clashing bookings or equipment on a 409.
type ConflictResponse struct {
	response.Response
	Conflicting []string `json:"conflicting,omitempty"`
	Unavailable []int64  `json:"unavailable,omitempty"`
}

var badRequest = []error{
	timeslot.ErrInvalidClock,
	timeslot.ErrInvalidDate,
	timeslot.ErrEmptyWindow,
	timeslot.ErrCrossesMidnight,
	reservation.ErrBlockedSlotEquipment,
	booking.ErrInvalidKind,
	booking.ErrInvalidStatus,
}

// Render writes the response for err. Unrecognised errors become a 500 with
// the fallback message so internals never leak.
func Render(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		slotErr       *storage.SlotTakenError
		equipmentErr  *storage.EquipmentTakenError
		transitionErr *storage.InvalidTransitionError
	)

	switch {
	case errors.As(err, &slotErr):
		msg := storage.ErrSlotTaken.Error()
		if len(slotErr.Titles) > 0 {
			msg = "time slot conflicts with: " + strings.Join(slotErr.Titles, ", ")
		}
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ConflictResponse{Response: response.Error(msg), Conflicting: slotErr.Titles})
	case errors.Is(err, storage.ErrSlotTaken):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ConflictResponse{Response: response.Error(storage.ErrSlotTaken.Error())})
	case errors.As(err, &equipmentErr):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ConflictResponse{Response: response.Error(storage.ErrEquipmentTaken.Error()), Unavailable: equipmentErr.IDs})
	case errors.As(err, &transitionErr):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(fmt.Sprintf("cannot change status from %s to %s", transitionErr.From, transitionErr.To)))
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("booking not found"))
	default:
		for _, target := range badRequest {
			if errors.Is(err, target) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(target.Error()))
				return
			}
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(fallback))
	}
}
