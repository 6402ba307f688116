package listBookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"studioBooker/internal/http-server/handlers/booking/listBookings/mocks"
	"studioBooker/internal/lib/logger/handlers/slogdiscard"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/scheduling/status"
	"studioBooker/internal/services/booking"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListBookingsHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	day := time.Date(2030, 1, 8, 0, 0, 0, 0, time.UTC)
	onDay := mock.MatchedBy(func(d time.Time) bool { return d.Equal(day) })

	views := []booking.View{
		{
			Booking:      models.Booking{ID: 1, Date: day, Start: timeslot.NewClock(8, 0), End: timeslot.NewClock(9, 0), Kind: models.KindVideo, Status: models.StatusPending},
			Resolution:   status.Resolution{Stored: models.StatusPending, Display: status.DisplayPending, IsUpcoming: true},
			Reservations: []models.Reservation{},
		},
		{
			Booking:      models.Booking{ID: 2, Date: day, Start: timeslot.NewClock(12, 0), End: timeslot.NewClock(18, 0), Kind: models.KindOther, Status: models.StatusBlocked, IsBlocked: true},
			Resolution:   status.Resolution{Stored: models.StatusBlocked, Display: status.DisplayBlocked},
			Reservations: []models.Reservation{},
		},
	}

	testCases := []struct {
		name           string
		query          string
		mockSetup      func(mock *mocks.BookingLister)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:  "Day with bookings",
			query: "?date=2030-01-08",
			mockSetup: func(m *mocks.BookingLister) {
				m.On("ListByDate", mock.Anything, onDay).Return(views, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var resp struct {
					Status   string `json:"status"`
					Date     string `json:"date"`
					Bookings []struct {
						Booking struct {
							ID int64 `json:"id"`
						} `json:"booking"`
						Resolution struct {
							DisplayStatus string `json:"display_status"`
						} `json:"resolution"`
					} `json:"bookings"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Equal(t, "OK", resp.Status)
				assert.Equal(t, "2030-01-08", resp.Date)
				require.Len(t, resp.Bookings, 2)
				assert.Equal(t, int64(1), resp.Bookings[0].Booking.ID)
				assert.Equal(t, "pending", resp.Bookings[0].Resolution.DisplayStatus)
				assert.Equal(t, "blocked", resp.Bookings[1].Resolution.DisplayStatus)
			},
		},
		{
			name:  "Empty day",
			query: "?date=2030-01-08",
			mockSetup: func(m *mocks.BookingLister) {
				m.On("ListByDate", mock.Anything, onDay).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","date":"2030-01-08","bookings":[]}`,
		},
		{
			name:           "Missing date",
			query:          "",
			mockSetup:      func(m *mocks.BookingLister) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"date is required"}`,
		},
		{
			name:           "Malformed date",
			query:          "?date=08.01.2030",
			mockSetup:      func(m *mocks.BookingLister) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"date must be YYYY-MM-DD"}`,
		},
		{
			name:  "Internal server error",
			query: "?date=2030-01-08",
			mockSetup: func(m *mocks.BookingLister) {
				m.On("ListByDate", mock.Anything, onDay).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to list bookings"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockLister := mocks.NewBookingLister(t)
			tc.mockSetup(mockLister)

			handler := New(logger, mockLister)

			req, err := http.NewRequest(http.MethodGet, "/bookings"+tc.query, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}
