package storage

import (
	"errors"
	"fmt"
	"strings"

	"studioBooker/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSlotTaken         = errors.New("studio slot already taken")
	ErrEquipmentTaken    = errors.New("equipment already reserved")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// SlotTakenError is returned when the write-time overlap check or the
// database exclusion constraint rejects a booking.
type SlotTakenError struct {
	Titles []string
}

func (e *SlotTakenError) Error() string {
	if len(e.Titles) == 0 {
		return ErrSlotTaken.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSlotTaken, strings.Join(e.Titles, ", "))
}

func (e *SlotTakenError) Is(target error) bool {
	return target == ErrSlotTaken
}

type EquipmentTakenError struct {
	IDs []int64
}

func (e *EquipmentTakenError) Error() string {
	return fmt.Sprintf("%s: %v", ErrEquipmentTaken, e.IDs)
}

func (e *EquipmentTakenError) Is(target error) bool {
	return target == ErrEquipmentTaken
}

type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StatusChange reports the booking after a status write and whether the
// write actually changed anything.
type StatusChange struct {
	Booking models.Booking
	Changed bool
}

// SignatureTransition is the outcome of a conditional signature update.
type SignatureTransition struct {
	Request models.SignatureRequest
	// Changed is true only for the call that moved the request.
	Changed bool
	// BookingConfirmed is true when the same call promoted the booking.
	BookingConfirmed bool
}
