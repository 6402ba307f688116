package models

import (
	"encoding/json"
	"time"

	"studioBooker/internal/lib/timeslot"
)

type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentInUse       EquipmentStatus = "in_use"
	EquipmentMaintenance EquipmentStatus = "maintenance"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentInUse, EquipmentMaintenance:
		return true
	}
	return false
}

// Reservable reports whether the coarse catalog flag lets the item be
// reserved at all. Time-scoped availability is checked separately.
func (s EquipmentStatus) Reservable() bool {
	switch s {
	case EquipmentAvailable, EquipmentInUse:
		return true
	case EquipmentMaintenance:
		return false
	}
	return false
}

type EquipmentItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Status   EquipmentStatus `json:"status"`
}

// Reservation ties one equipment item to a booking's date and window.
type Reservation struct {
	ID            int64          `json:"id"`
	BookingID     int64          `json:"booking_id"`
	EquipmentID   int64          `json:"equipment_id"`
	EquipmentName string         `json:"equipment_name"`
	Date          time.Time      `json:"-"`
	Start         timeslot.Clock `json:"start_time"`
	End           timeslot.Clock `json:"end_time"`
}

func (r Reservation) Window() timeslot.Window {
	return timeslot.Window{Start: r.Start, End: r.End}
}

func (r Reservation) MarshalJSON() ([]byte, error) {
	type alias Reservation
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(r), Date: timeslot.FormatDate(r.Date)})
}
