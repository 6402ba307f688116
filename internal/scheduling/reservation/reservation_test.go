package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"studioBooker/internal/lib/logger/handlers/slogdiscard"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan10 = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

const (
	cameraX  int64 = 1
	lightKit int64 = 2
	cameraY  int64 = 3
	smoke    int64 = 4
)

var catalog = []models.EquipmentItem{
	{ID: cameraX, Name: "Camera X", Category: "camera", Status: models.EquipmentAvailable},
	{ID: lightKit, Name: "Light kit", Category: "lighting", Status: models.EquipmentAvailable},
	{ID: cameraY, Name: "Camera Y", Category: "camera", Status: models.EquipmentInUse},
	{ID: smoke, Name: "Smoke machine", Category: "fx", Status: models.EquipmentMaintenance},
}

func window(start, end int) timeslot.Window {
	return timeslot.Window{Start: timeslot.NewClock(start, 0), End: timeslot.NewClock(end, 0)}
}

func reservationOf(bookingID, equipmentID int64, start, end int) models.Reservation {
	name := ""
	for _, item := range catalog {
		if item.ID == equipmentID {
			name = item.Name
		}
	}
	return models.Reservation{
		BookingID:     bookingID,
		EquipmentID:   equipmentID,
		EquipmentName: name,
		Date:          jan10,
		Start:         timeslot.NewClock(start, 0),
		End:           timeslot.NewClock(end, 0),
	}
}

type fakeStore struct {
	reservations []models.Reservation
	err          error
}

func (f *fakeStore) ReservationsByDate(_ context.Context, _ time.Time) ([]models.Reservation, error) {
	return f.reservations, f.err
}

func (f *fakeStore) ListEquipment(_ context.Context) ([]models.EquipmentItem, error) {
	return catalog, nil
}

type advisorFunc func(ctx context.Context, req AdviceRequest) (*Advice, error)

func (f advisorFunc) Suggest(ctx context.Context, req AdviceRequest) (*Advice, error) {
	return f(ctx, req)
}

func TestUnavailable_MirrorsBookingOverlap(t *testing.T) {
	t.Parallel()

	for s1 := 8; s1 < 20; s1++ {
		for e1 := s1 + 1; e1 <= 20; e1++ {
			existing := []models.Reservation{reservationOf(1, cameraX, s1, e1)}
			for s2 := 8; s2 < 20; s2++ {
				for e2 := s2 + 1; e2 <= 20; e2++ {
					got := Unavailable(existing, jan10, window(s2, e2), []int64{cameraX}, 0)
					want := window(s1, e1).Overlaps(window(s2, e2))
					require.Equal(t, want, len(got) == 1, "[%d,%d) vs [%d,%d)", s1, e1, s2, e2)
				}
			}
		}
	}
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	existing := []models.Reservation{
		reservationOf(1, cameraX, 9, 12),
		reservationOf(1, lightKit, 9, 12),
	}

	assert.Equal(t, []int64{cameraX}, Unavailable(existing, jan10, window(10, 11), []int64{cameraX, cameraY, cameraX}, 0))
	assert.Empty(t, Unavailable(existing, jan10, window(12, 14), []int64{cameraX, lightKit}, 0), "touching windows")
	assert.Empty(t, Unavailable(existing, jan10, window(10, 11), []int64{cameraX}, 1), "own reservations excluded")
	assert.Empty(t, Unavailable(existing, jan10.AddDate(0, 0, 1), window(10, 11), []int64{cameraX}, 0), "other day")
}

func TestCheckAvailability_ScenarioC(t *testing.T) {
	t.Parallel()

	store := &fakeStore{reservations: []models.Reservation{reservationOf(1, cameraX, 9, 12)}}
	m := NewManager(slogdiscard.NewDiscardLogger(), store, nil, time.Second)

	got, err := m.CheckAvailability(context.Background(), Request{
		Date:    jan10,
		Window:  window(10, 11),
		Kind:    models.KindPhotoShoot,
		ItemIDs: []int64{cameraX},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{cameraX}, got.Unavailable)
	assert.Equal(t, []string{"Camera X"}, got.UnavailableNames)
	assert.Nil(t, got.Suggestion)
	assert.Empty(t, got.Alternatives)
}

func TestCheckAvailability_MaintenanceAndUnknownItems(t *testing.T) {
	t.Parallel()

	m := NewManager(slogdiscard.NewDiscardLogger(), &fakeStore{}, nil, time.Second)

	got, err := m.CheckAvailability(context.Background(), Request{
		Date:    jan10,
		Window:  window(10, 11),
		ItemIDs: []int64{smoke, lightKit, 99},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{smoke, 99}, got.Unavailable)
	assert.Equal(t, []string{"Smoke machine", "#99"}, got.UnavailableNames)
}

func TestCheckAvailability_BlockedSlot(t *testing.T) {
	t.Parallel()

	m := NewManager(slogdiscard.NewDiscardLogger(), &fakeStore{}, nil, time.Second)

	_, err := m.CheckAvailability(context.Background(), Request{
		Date:    jan10,
		Window:  window(10, 11),
		ItemIDs: []int64{cameraX},
		Blocked: true,
	})
	assert.ErrorIs(t, err, ErrBlockedSlotEquipment)
}

func TestCheckAvailability_StoreError(t *testing.T) {
	t.Parallel()

	m := NewManager(slogdiscard.NewDiscardLogger(), &fakeStore{err: errors.New("db down")}, nil, time.Second)

	_, err := m.CheckAvailability(context.Background(), Request{Date: jan10, Window: window(10, 11), ItemIDs: []int64{cameraX}})
	assert.ErrorContains(t, err, "db down")
}

func TestCheckAvailability_Advisor(t *testing.T) {
	t.Parallel()

	store := &fakeStore{reservations: []models.Reservation{
		reservationOf(1, cameraX, 9, 12),
		reservationOf(2, lightKit, 10, 11),
	}}

	t.Run("suggestion and filtered alternatives", func(t *testing.T) {
		t.Parallel()

		var seen AdviceRequest
		advisor := advisorFunc(func(_ context.Context, req AdviceRequest) (*Advice, error) {
			seen = req
			// light kit is busy and the smoke machine is in maintenance: both must be dropped
			return &Advice{Text: "Use Camera Y instead", AlternativeItemIDs: []int64{lightKit, cameraY, smoke, cameraY}}, nil
		})
		m := NewManager(slogdiscard.NewDiscardLogger(), store, advisor, time.Second)

		got, err := m.CheckAvailability(context.Background(), Request{
			Date:    jan10,
			Window:  window(10, 11),
			Kind:    models.KindVideo,
			ItemIDs: []int64{cameraX},
		})
		require.NoError(t, err)

		require.NotNil(t, got.Suggestion)
		assert.Equal(t, "Use Camera Y instead", *got.Suggestion)
		assert.Equal(t, []int64{cameraY}, got.Alternatives)

		require.Len(t, seen.Candidates, 1)
		assert.Equal(t, cameraY, seen.Candidates[0].ID)
		require.Len(t, seen.Unavailable, 1)
		assert.Equal(t, "Camera X", seen.Unavailable[0].Name)
	})

	t.Run("advisor failure degrades to no suggestion", func(t *testing.T) {
		t.Parallel()

		advisor := advisorFunc(func(context.Context, AdviceRequest) (*Advice, error) {
			return nil, errors.New("quota exceeded")
		})
		m := NewManager(slogdiscard.NewDiscardLogger(), store, advisor, time.Second)

		got, err := m.CheckAvailability(context.Background(), Request{Date: jan10, Window: window(10, 11), ItemIDs: []int64{cameraX}})
		require.NoError(t, err)
		assert.Equal(t, []int64{cameraX}, got.Unavailable)
		assert.Nil(t, got.Suggestion)
	})

	t.Run("slow advisor is cut off", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		advisor := advisorFunc(func(context.Context, AdviceRequest) (*Advice, error) {
			<-release
			return &Advice{Text: "too late"}, nil
		})
		m := NewManager(slogdiscard.NewDiscardLogger(), store, advisor, 20*time.Millisecond)

		start := time.Now()
		got, err := m.CheckAvailability(context.Background(), Request{Date: jan10, Window: window(10, 11), ItemIDs: []int64{cameraX}})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)
		assert.Nil(t, got.Suggestion)
		assert.Equal(t, []int64{cameraX}, got.Unavailable)
	})

	t.Run("advisor not consulted when everything is free", func(t *testing.T) {
		t.Parallel()

		advisor := advisorFunc(func(context.Context, AdviceRequest) (*Advice, error) {
			t.Error("advisor must not be called")
			return nil, nil
		})
		m := NewManager(slogdiscard.NewDiscardLogger(), store, advisor, time.Second)

		got, err := m.CheckAvailability(context.Background(), Request{Date: jan10, Window: window(12, 13), ItemIDs: []int64{cameraX}})
		require.NoError(t, err)
		assert.Empty(t, got.Unavailable)
	})

	t.Run("write path skips the advisor", func(t *testing.T) {
		t.Parallel()

		advisor := advisorFunc(func(context.Context, AdviceRequest) (*Advice, error) {
			t.Error("advisor must not be called")
			return nil, nil
		})
		m := NewManager(slogdiscard.NewDiscardLogger(), store, advisor, time.Second)

		got, err := m.CheckAvailability(context.Background(), Request{Date: jan10, Window: window(10, 11), ItemIDs: []int64{cameraX}, NoAdvice: true})
		require.NoError(t, err)
		assert.Equal(t, []int64{cameraX}, got.Unavailable)
		assert.Nil(t, got.Suggestion)
	})
}
