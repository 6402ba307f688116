package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to the database named by TEST_POSTGRES_DSN and starts
// from empty tables. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set")
	}

	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))

	_, err = s.DB.ExecContext(ctx, `
		TRUNCATE signature_requests, reservations, bookings, equipment, tasks, projects RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return s
}

func testBooking(t *testing.T, date, start, end string) *models.Booking {
	t.Helper()

	d, err := timeslot.ParseDate(date)
	require.NoError(t, err)
	w, err := timeslot.ParseWindow(start, end)
	require.NoError(t, err)

	return &models.Booking{
		Date:   d,
		Start:  w.Start,
		End:    w.End,
		Kind:   models.KindPhotoShoot,
		Status: models.StatusPending,
		Title:  "Shoot " + start,
	}
}

func TestStorage_BookingLifecycle(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	camera, err := s.CreateEquipment(ctx, &models.EquipmentItem{Name: "Camera A", Category: "camera", Status: models.EquipmentAvailable})
	require.NoError(t, err)

	b := testBooking(t, "2025-03-10", "10:00", "12:00")
	id, err := s.CreateBooking(ctx, b, []int64{camera})
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got.DateString())
	assert.Equal(t, "10:00", got.Start.String())
	assert.Equal(t, models.StatusPending, got.Status)

	reservations, err := s.ReservationsByBooking(ctx, id)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, "Camera A", reservations[0].EquipmentName)

	// touching windows are not conflicts
	next := testBooking(t, "2025-03-10", "12:00", "13:00")
	_, err = s.CreateBooking(ctx, next, []int64{camera})
	require.NoError(t, err)

	overlap := testBooking(t, "2025-03-10", "11:00", "12:30")
	_, err = s.CreateBooking(ctx, overlap, nil)
	require.ErrorIs(t, err, storage.ErrSlotTaken)

	var slotErr *storage.SlotTakenError
	require.True(t, errors.As(err, &slotErr))
	assert.Equal(t, []string{"Shoot 10:00", "Shoot 12:00"}, slotErr.Titles)

	change, err := s.SetBookingStatus(ctx, id, models.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, change.Changed)

	change, err = s.SetBookingStatus(ctx, id, models.StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, change.Changed)

	_, err = s.SetBookingStatus(ctx, id, models.StatusPending)
	require.ErrorIs(t, err, storage.ErrInvalidTransition)

	require.NoError(t, s.DeleteBooking(ctx, id))
	_, err = s.GetBooking(ctx, id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	reservations, err = s.ReservationsByBooking(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, reservations)

	require.ErrorIs(t, s.DeleteBooking(ctx, id), storage.ErrNotFound)
}

func TestStorage_UpdateBookingExcludesItself(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	b := testBooking(t, "2025-03-11", "09:00", "11:00")
	id, err := s.CreateBooking(ctx, b, nil)
	require.NoError(t, err)

	moved := testBooking(t, "2025-03-11", "10:00", "12:00")
	moved.ID = id
	require.NoError(t, s.UpdateBooking(ctx, moved, nil))

	got, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.Start.String())
	assert.Equal(t, "12:00", got.End.String())
}

func TestStorage_EquipmentDoubleBooking(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	light, err := s.CreateEquipment(ctx, &models.EquipmentItem{Name: "Light Kit", Category: "lighting", Status: models.EquipmentAvailable})
	require.NoError(t, err)

	first := testBooking(t, "2025-03-12", "09:00", "11:00")
	_, err = s.CreateBooking(ctx, first, []int64{light})
	require.NoError(t, err)

	// another day is fine, the same item on the same day is not
	other := testBooking(t, "2025-03-13", "09:00", "11:00")
	_, err = s.CreateBooking(ctx, other, []int64{light})
	require.NoError(t, err)

	d, err := timeslot.ParseDate("2025-03-12")
	require.NoError(t, err)
	res, err := s.ReservationsByDate(ctx, d)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, light, res[0].EquipmentID)
}

func TestStorage_ConcurrentCreateSameSlot(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	const writers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
	)

	for i := 0; i < writers; i++ {
		b := testBooking(t, "2025-04-01", "10:00", "11:00")

		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.CreateBooking(ctx, b, nil)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, storage.ErrSlotTaken):
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, taken)
}

func TestStorage_SignatureTransitions(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	b := testBooking(t, "2025-05-01", "10:00", "12:00")
	bookingID, err := s.CreateBooking(ctx, b, nil)
	require.NoError(t, err)

	old := &models.SignatureRequest{BookingID: &bookingID, EnvelopeID: "env-old", Status: models.SignatureSent, RecipientEmail: "a@example.com"}
	_, err = s.CreateSignatureRequest(ctx, old)
	require.NoError(t, err)

	current := &models.SignatureRequest{BookingID: &bookingID, EnvelopeID: "env-new", Status: models.SignatureSent, RecipientEmail: "a@example.com"}
	_, err = s.CreateSignatureRequest(ctx, current)
	require.NoError(t, err)

	got, err := s.SignatureRequestByEnvelope(ctx, "env-old")
	require.NoError(t, err)
	assert.NotNil(t, got.SupersededAt)

	got, err = s.SignatureRequestByEnvelope(ctx, "env-new")
	require.NoError(t, err)
	assert.Nil(t, got.SupersededAt)
	assert.Equal(t, bookingID, *got.BookingID)

	// the superseded request records the signature but leaves the booking alone
	tr, err := s.TransitionSignature(ctx, "env-old", models.SignatureSigned)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.False(t, tr.BookingConfirmed)

	tr, err = s.TransitionSignature(ctx, "env-new", models.SignatureSigned)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.True(t, tr.BookingConfirmed)

	tr, err = s.TransitionSignature(ctx, "env-new", models.SignatureSigned)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Equal(t, models.SignatureSigned, tr.Request.Status)

	confirmed, err := s.GetBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, err = s.TransitionSignature(ctx, "env-missing", models.SignatureSigned)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_StaleSignatureRequests(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	req := &models.SignatureRequest{EnvelopeID: "env-stale", Status: models.SignatureSent, RecipientEmail: "b@example.com"}
	_, err := s.CreateSignatureRequest(ctx, req)
	require.NoError(t, err)

	stale, err := s.StaleSignatureRequests(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "env-stale", stale[0].EnvelopeID)

	stale, err = s.StaleSignatureRequests(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestStorage_PlanningQueries(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO projects (name, client_name, due_date) VALUES
			('Lookbook', 'Acme', '2025-06-10'),
			('Archive', 'Acme', '2025-07-01');
		INSERT INTO tasks (title, assignee, priority, due_date, done) VALUES
			('Edit selects', 'mia', 'high', '2025-06-05', FALSE),
			('Invoice', 'jo', 'low', '2025-06-06', FALSE),
			('Backup', 'mia', 'medium', '2025-06-07', TRUE)`)
	require.NoError(t, err)

	from, _ := timeslot.ParseDate("2025-06-01")
	to, _ := timeslot.ParseDate("2025-06-30")

	projects, err := s.ProjectsDueBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Lookbook", projects[0].Name)

	tasks, err := s.TasksDueBetween(ctx, from, to, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = s.TasksDueBetween(ctx, from, to, "mia")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
}
