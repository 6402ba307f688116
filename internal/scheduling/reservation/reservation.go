// Package reservation checks time-scoped equipment availability.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
)

var ErrBlockedSlotEquipment = errors.New("equipment cannot be reserved for a blocked slot")

// Unavailable returns the requested item ids that already hold a reservation
// overlapping window on date. Reservations owned by excludeBookingID are
// ignored. Order follows requested, duplicates are dropped.
func Unavailable(reservations []models.Reservation, date time.Time, window timeslot.Window, requested []int64, excludeBookingID int64) []int64 {
	taken := make(map[int64]bool)
	for _, r := range reservations {
		if excludeBookingID != 0 && r.BookingID == excludeBookingID {
			continue
		}
		if !timeslot.SameDay(r.Date, date) {
			continue
		}
		if r.Window().Overlaps(window) {
			taken[r.EquipmentID] = true
		}
	}

	seen := make(map[int64]bool, len(requested))
	out := make([]int64, 0)
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		if taken[id] {
			out = append(out, id)
		}
	}

	return out
}

type Request struct {
	Date             time.Time
	Window           timeslot.Window
	Kind             models.BookingKind
	ItemIDs          []int64
	ExcludeBookingID int64
	// Blocked marks a request made for an administrative hold.
	Blocked bool
	// NoAdvice skips the advisor. Writes only need the verdict.
	NoAdvice bool
}

type Availability struct {
	Unavailable      []int64  `json:"unavailable"`
	UnavailableNames []string `json:"unavailable_names"`
	Suggestion       *string  `json:"suggestion,omitempty"`
	Alternatives     []int64  `json:"alternatives,omitempty"`
}

type AdviceRequest struct {
	Date        time.Time
	Window      timeslot.Window
	Kind        models.BookingKind
	Requested   []models.EquipmentItem
	Unavailable []models.EquipmentItem
	// Candidates are the catalog items free for the window.
	Candidates []models.EquipmentItem
}

type Advice struct {
	Text               string
	AlternativeItemIDs []int64
}

// Advisor is an optional, best-effort source of suggestions. A nil Advice
// with a nil error means it had nothing to say.
type Advisor interface {
	Suggest(ctx context.Context, req AdviceRequest) (*Advice, error)
}

type Store interface {
	ReservationsByDate(ctx context.Context, date time.Time) ([]models.Reservation, error)
	ListEquipment(ctx context.Context) ([]models.EquipmentItem, error)
}

type Manager struct {
	log     *slog.Logger
	store   Store
	advisor Advisor
	timeout time.Duration
}

// NewManager builds a manager. advisor may be nil.
func NewManager(log *slog.Logger, store Store, advisor Advisor, adviceTimeout time.Duration) *Manager {
	if adviceTimeout <= 0 {
		adviceTimeout = 3 * time.Second
	}

	return &Manager{
		log:     log,
		store:   store,
		advisor: advisor,
		timeout: adviceTimeout,
	}
}

func (m *Manager) CheckAvailability(ctx context.Context, req Request) (Availability, error) {
	const op = "scheduling.reservation.CheckAvailability"

	log := m.log.With(slog.String("op", op))

	if req.Blocked && len(req.ItemIDs) > 0 {
		return Availability{}, fmt.Errorf("%s: %w", op, ErrBlockedSlotEquipment)
	}

	reservations, err := m.store.ReservationsByDate(ctx, req.Date)
	if err != nil {
		return Availability{}, fmt.Errorf("%s: %w", op, err)
	}

	catalog, err := m.store.ListEquipment(ctx)
	if err != nil {
		return Availability{}, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[int64]models.EquipmentItem, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}

	unavailable := Unavailable(reservations, req.Date, req.Window, req.ItemIDs, req.ExcludeBookingID)

	// items under maintenance cannot be taken regardless of the schedule
	marked := make(map[int64]bool, len(unavailable))
	for _, id := range unavailable {
		marked[id] = true
	}
	for _, id := range req.ItemIDs {
		item, ok := byID[id]
		if marked[id] || (ok && item.Status.Reservable()) {
			continue
		}
		marked[id] = true
		unavailable = append(unavailable, id)
	}

	res := Availability{
		Unavailable:      unavailable,
		UnavailableNames: make([]string, 0, len(unavailable)),
	}
	for _, id := range unavailable {
		if item, ok := byID[id]; ok {
			res.UnavailableNames = append(res.UnavailableNames, item.Name)
		} else {
			res.UnavailableNames = append(res.UnavailableNames, fmt.Sprintf("#%d", id))
		}
	}

	if len(unavailable) == 0 || m.advisor == nil || req.NoAdvice {
		return res, nil
	}

	free := freeItems(catalog, reservations, req)

	advice, err := m.advise(ctx, req, byID, unavailable, free)
	if err != nil {
		log.Warn("advisor unavailable, continuing without suggestion", sl.Err(err))
		return res, nil
	}
	if advice == nil {
		return res, nil
	}

	if advice.Text != "" {
		text := advice.Text
		res.Suggestion = &text
	}

	freeIDs := make(map[int64]bool, len(free))
	for _, item := range free {
		freeIDs[item.ID] = true
	}
	for _, id := range advice.AlternativeItemIDs {
		if freeIDs[id] {
			res.Alternatives = append(res.Alternatives, id)
			delete(freeIDs, id)
		}
	}

	return res, nil
}

func (m *Manager) advise(ctx context.Context, req Request, byID map[int64]models.EquipmentItem, unavailable []int64, free []models.EquipmentItem) (*Advice, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	adviceReq := AdviceRequest{
		Date:       req.Date,
		Window:     req.Window,
		Kind:       req.Kind,
		Candidates: free,
	}
	for _, id := range req.ItemIDs {
		if item, ok := byID[id]; ok {
			adviceReq.Requested = append(adviceReq.Requested, item)
		}
	}
	for _, id := range unavailable {
		if item, ok := byID[id]; ok {
			adviceReq.Unavailable = append(adviceReq.Unavailable, item)
		}
	}

	type result struct {
		advice *Advice
		err    error
	}

	done := make(chan result, 1)
	go func() {
		a, err := m.advisor.Suggest(ctx, adviceReq)
		done <- result{advice: a, err: err}
	}()

	select {
	case r := <-done:
		return r.advice, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// freeItems lists reservable catalog items with no overlapping reservation
// that were not part of the request.
func freeItems(catalog []models.EquipmentItem, reservations []models.Reservation, req Request) []models.EquipmentItem {
	requested := make(map[int64]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		requested[id] = true
	}

	ids := make([]int64, 0, len(catalog))
	for _, item := range catalog {
		ids = append(ids, item.ID)
	}
	busy := make(map[int64]bool)
	for _, id := range Unavailable(reservations, req.Date, req.Window, ids, req.ExcludeBookingID) {
		busy[id] = true
	}

	var free []models.EquipmentItem
	for _, item := range catalog {
		if requested[item.ID] || busy[item.ID] || !item.Status.Reservable() {
			continue
		}
		free = append(free, item)
	}

	return free
}
