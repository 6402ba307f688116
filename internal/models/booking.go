package models

import (
	"encoding/json"
	"time"

	"studioBooker/internal/lib/timeslot"
)

type BookingKind string

const (
	KindPhotoShoot  BookingKind = "photo_shoot"
	KindVideo       BookingKind = "video"
	KindGalleryShow BookingKind = "gallery_show"
	KindRental      BookingKind = "rental"
	KindOther       BookingKind = "other"
)

func (k BookingKind) Valid() bool {
	switch k {
	case KindPhotoShoot, KindVideo, KindGalleryShow, KindRental, KindOther:
		return true
	}
	return false
}

func (k BookingKind) Label() string {
	switch k {
	case KindPhotoShoot:
		return "Photo shoot"
	case KindVideo:
		return "Video"
	case KindGalleryShow:
		return "Gallery show"
	case KindRental:
		return "Rental"
	case KindOther:
		return "Other"
	}
	return string(k)
}

// Color is the calendar color of studio bookings of this kind.
func (k BookingKind) Color() string {
	switch k {
	case KindPhotoShoot:
		return "#6366f1"
	case KindVideo:
		return "#ec4899"
	case KindGalleryShow:
		return "#f59e0b"
	case KindRental:
		return "#10b981"
	case KindOther:
		return "#64748b"
	}
	return "#64748b"
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusBlocked   BookingStatus = "blocked"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusBlocked:
		return true
	}
	return false
}

// CanTransitionTo lists the staff-driven status changes. Staying in the
// same status is always allowed and is a no-op.
func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	if s == to {
		return true
	}

	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusBlocked
	case StatusConfirmed:
		return to == StatusBlocked
	case StatusBlocked:
		return to == StatusPending
	}
	return false
}

type Booking struct {
	ID          int64          `json:"id"`
	Date        time.Time      `json:"-"`
	Start       timeslot.Clock `json:"start_time"`
	End         timeslot.Clock `json:"end_time"`
	Kind        BookingKind    `json:"kind"`
	Status      BookingStatus  `json:"status"`
	IsBlocked   bool           `json:"is_blocked"`
	ClientID    *int64         `json:"client_id,omitempty"`
	Title       string         `json:"title,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	ClientName  string         `json:"client_name,omitempty"`
	ClientEmail string         `json:"client_email,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (b Booking) Window() timeslot.Window {
	return timeslot.Window{Start: b.Start, End: b.End}
}

// Blocked reports an administrative hold, whichever way it was recorded.
func (b Booking) Blocked() bool {
	return b.IsBlocked || b.Status == StatusBlocked
}

// OccupiesSlot reports whether the booking takes the studio for its window.
func (b Booking) OccupiesSlot() bool {
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusBlocked:
		return true
	}
	return b.IsBlocked
}

// DisplayTitle is the event name, falling back to the kind label.
func (b Booking) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Kind.Label()
}

func (b Booking) DateString() string {
	return timeslot.FormatDate(b.Date)
}

func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(b), Date: b.DateString()})
}
