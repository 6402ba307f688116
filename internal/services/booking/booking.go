// Package booking orchestrates booking writes: validation, the conflict and
// equipment pre-checks, the transactional store write and the signature
// request that follows a new booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/scheduling/conflict"
	"studioBooker/internal/scheduling/reservation"
	"studioBooker/internal/scheduling/status"
	"studioBooker/internal/storage"
)

var (
	ErrInvalidKind   = errors.New("invalid booking kind")
	ErrInvalidStatus = errors.New("invalid booking status")
)

type Store interface {
	BookingsByDate(ctx context.Context, date time.Time) ([]models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking, equipmentIDs []int64) (int64, error)
	UpdateBooking(ctx context.Context, b *models.Booking, equipmentIDs []int64) error
	SetBookingStatus(ctx context.Context, id int64, to models.BookingStatus) (storage.StatusChange, error)
	DeleteBooking(ctx context.Context, id int64) error
	ReservationsByDate(ctx context.Context, date time.Time) ([]models.Reservation, error)
	ReservationsByBooking(ctx context.Context, bookingID int64) ([]models.Reservation, error)
	ListEquipment(ctx context.Context) ([]models.EquipmentItem, error)
}

type SignatureRequester interface {
	RequestForBooking(ctx context.Context, b models.Booking)
}

// Input is a validated-at-the-edge booking form.
type Input struct {
	Date         time.Time
	Start        timeslot.Clock
	End          timeslot.Clock
	Kind         models.BookingKind
	Blocked      bool
	ClientID     *int64
	Title        string
	Notes        string
	ClientName   string
	ClientEmail  string
	EquipmentIDs []int64
}

// View is a booking as read back by clients, with its display status.
type View struct {
	Booking      models.Booking       `json:"booking"`
	Resolution   status.Resolution    `json:"resolution"`
	Reservations []models.Reservation `json:"reservations"`
}

type Service struct {
	log       *slog.Logger
	store     Store
	conflicts *conflict.Checker
	equipment *reservation.Manager
	resolver  *status.Resolver
	signer    SignatureRequester
}

func NewService(
	log *slog.Logger,
	store Store,
	equipment *reservation.Manager,
	resolver *status.Resolver,
	signer SignatureRequester,
) *Service {
	return &Service{
		log:       log,
		store:     store,
		conflicts: conflict.NewChecker(store),
		equipment: equipment,
		resolver:  resolver,
		signer:    signer,
	}
}

func (s *Service) CheckConflicts(ctx context.Context, c conflict.Candidate) (conflict.Result, error) {
	if _, err := timeslot.NewWindow(c.Window.Start, c.Window.End); err != nil {
		return conflict.Result{}, err
	}
	return s.conflicts.Check(ctx, c)
}

func (s *Service) CheckAvailability(ctx context.Context, req reservation.Request) (reservation.Availability, error) {
	if _, err := timeslot.NewWindow(req.Window.Start, req.Window.End); err != nil {
		return reservation.Availability{}, err
	}
	return s.equipment.CheckAvailability(ctx, req)
}

func (s *Service) Create(ctx context.Context, in Input) (View, error) {
	const op = "services.booking.Create"

	log := s.log.With(slog.String("op", op))

	b, err := s.prepare(in)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.precheck(ctx, b, 0, in.EquipmentIDs); err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateBooking(ctx, b, in.EquipmentIDs)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking created", slog.Int64("id", id), slog.String("date", b.DateString()), slog.String("window", b.Window().String()))

	if !b.Blocked() && s.signer != nil {
		s.signer.RequestForBooking(ctx, *b)
	}

	return s.view(ctx, *b)
}

// Update rewrites schedule and details. The booking's own record never
// conflicts with itself.
func (s *Service) Update(ctx context.Context, id int64, in Input) (View, error) {
	const op = "services.booking.Update"

	current, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	b, err := s.prepare(in)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}
	b.ID = id
	b.Status = current.Status
	b.IsBlocked = current.IsBlocked

	if b.Blocked() && len(in.EquipmentIDs) > 0 {
		return View{}, fmt.Errorf("%s: %w", op, reservation.ErrBlockedSlotEquipment)
	}

	if err = s.precheck(ctx, b, id, in.EquipmentIDs); err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.store.UpdateBooking(ctx, b, in.EquipmentIDs); err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking updated", slog.String("op", op), slog.Int64("id", id))

	return s.view(ctx, *b)
}

func (s *Service) SetStatus(ctx context.Context, id int64, to models.BookingStatus) (View, error) {
	const op = "services.booking.SetStatus"

	if !to.Valid() {
		return View{}, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, to)
	}

	change, err := s.store.SetBookingStatus(ctx, id, to)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	if change.Changed {
		s.log.Info("booking status changed", slog.String("op", op), slog.Int64("id", id), slog.String("status", string(to)))
	}

	return s.view(ctx, change.Booking)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "services.booking.Delete"

	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking deleted", slog.String("op", op), slog.Int64("id", id))

	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (View, error) {
	const op = "services.booking.Get"

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.view(ctx, *b)
}

// ListByDate returns the day's bookings with resolved display status.
// Reservations are grouped onto each booking from one query.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]View, error) {
	const op = "services.booking.ListByDate"

	bookings, err := s.store.BookingsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reservations, err := s.store.ReservationsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byBooking := make(map[int64][]models.Reservation)
	for _, r := range reservations {
		byBooking[r.BookingID] = append(byBooking[r.BookingID], r)
	}

	views := make([]View, 0, len(bookings))
	for _, b := range bookings {
		res := byBooking[b.ID]
		if res == nil {
			res = []models.Reservation{}
		}
		views = append(views, View{Booking: b, Resolution: s.resolver.Resolve(b), Reservations: res})
	}

	return views, nil
}

func (s *Service) ListEquipment(ctx context.Context) ([]models.EquipmentItem, error) {
	const op = "services.booking.ListEquipment"

	items, err := s.store.ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (s *Service) prepare(in Input) (*models.Booking, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}

	if _, err := timeslot.NewWindow(in.Start, in.End); err != nil {
		return nil, err
	}

	if in.Blocked && len(in.EquipmentIDs) > 0 {
		return nil, reservation.ErrBlockedSlotEquipment
	}

	st := models.StatusPending
	if in.Blocked {
		st = models.StatusBlocked
	}

	return &models.Booking{
		Date:        timeslot.DateOnly(in.Date),
		Start:       in.Start,
		End:         in.End,
		Kind:        in.Kind,
		Status:      st,
		IsBlocked:   in.Blocked,
		ClientID:    in.ClientID,
		Title:       in.Title,
		Notes:       in.Notes,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
	}, nil
}

// precheck is the application-level check that runs before every write.
// The store repeats it inside the write transaction.
func (s *Service) precheck(ctx context.Context, b *models.Booking, excludeID int64, equipmentIDs []int64) error {
	res, err := s.conflicts.Check(ctx, conflict.Candidate{Date: b.Date, Window: b.Window(), ExcludeID: excludeID})
	if err != nil {
		return err
	}
	if res.HasConflict {
		return &storage.SlotTakenError{Titles: res.Conflicting}
	}

	if len(equipmentIDs) == 0 {
		return nil
	}

	avail, err := s.equipment.CheckAvailability(ctx, reservation.Request{
		Date:             b.Date,
		Window:           b.Window(),
		Kind:             b.Kind,
		ItemIDs:          equipmentIDs,
		ExcludeBookingID: excludeID,
		Blocked:          b.Blocked(),
		NoAdvice:         true,
	})
	if err != nil {
		return err
	}
	if len(avail.Unavailable) > 0 {
		return &storage.EquipmentTakenError{IDs: avail.Unavailable}
	}

	return nil
}

func (s *Service) view(ctx context.Context, b models.Booking) (View, error) {
	reservations, err := s.store.ReservationsByBooking(ctx, b.ID)
	if err != nil {
		return View{}, err
	}

	return View{Booking: b, Resolution: s.resolver.Resolve(b), Reservations: reservations}, nil
}
