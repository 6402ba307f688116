// Package bookingForm is the JSON body shared by booking create and update.
package bookingForm

import (
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/services/booking"
)

type Request struct {
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"required,datetime=15:04"`
	Kind         string  `json:"kind" validate:"required,oneof=photo_shoot video gallery_show rental other"`
	IsBlocked    bool    `json:"is_blocked"`
	ClientID     *int64  `json:"client_id,omitempty"`
	Title        string  `json:"title" validate:"max=200"`
	Notes        string  `json:"notes"`
	ClientName   string  `json:"client_name"`
	ClientEmail  string  `json:"client_email" validate:"omitempty,email"`
	EquipmentIDs []int64 `json:"equipment_ids" validate:"dive,gt=0"`
}

// Input converts a validated request into service input. Window rules are
// left to the service.
func (r Request) Input() (booking.Input, error) {
	date, err := timeslot.ParseDate(r.Date)
	if err != nil {
		return booking.Input{}, err
	}

	start, err := timeslot.ParseClock(r.StartTime)
	if err != nil {
		return booking.Input{}, err
	}

	end, err := timeslot.ParseClock(r.EndTime)
	if err != nil {
		return booking.Input{}, err
	}

	return booking.Input{
		Date:         date,
		Start:        start,
		End:          end,
		Kind:         models.BookingKind(r.Kind),
		Blocked:      r.IsBlocked,
		ClientID:     r.ClientID,
		Title:        r.Title,
		Notes:        r.Notes,
		ClientName:   r.ClientName,
		ClientEmail:  r.ClientEmail,
		EquipmentIDs: r.EquipmentIDs,
	}, nil
}
