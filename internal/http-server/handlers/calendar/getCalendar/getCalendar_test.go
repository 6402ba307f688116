package getCalendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"studioBooker/internal/calendar"
	"studioBooker/internal/http-server/handlers/calendar/getCalendar/mocks"
	"studioBooker/internal/lib/logger/handlers/slogdiscard"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type externalStub struct{}

func (externalStub) Kind() models.EventSource { return models.SourceExternal }

func (externalStub) Events(context.Context, calendar.Range) ([]models.CalendarEvent, error) {
	return nil, nil
}

func at(h, m int) *timeslot.Clock {
	c := timeslot.NewClock(h, m)
	return &c
}

func TestGetCalendarHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	march := calendar.MonthRange(2025, time.March)
	third := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	events := []models.CalendarEvent{
		{ID: "project-1", Title: "Catalog due", Date: third, Source: models.SourceProject, Color: "#0ea5e9"},
		{ID: "booking-2", Title: "Portraits", Date: third, Start: at(9, 0), End: at(10, 0), Source: models.SourceStudio, Color: "#6366f1", Editable: true},
		{ID: "booking-1", Title: "Lookbook", Date: third, Start: at(10, 0), End: at(12, 0), Source: models.SourceStudio, Color: "#6366f1", Editable: true},
	}
	stub := externalStub{}

	testCases := []struct {
		name           string
		query          string
		token          string
		factoryErr     error
		mockSetup      func(mock *mocks.EventAggregator)
		expectFactory  bool
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:  "Month with all sources",
			query: "?month=2025-03",
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.AllSources()).Return(events)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var resp CalendarResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Equal(t, "OK", resp.Status)
				assert.Equal(t, "2025-03", resp.Month)
				assert.Equal(t, "2025-03-01", resp.RangeStart)
				assert.Equal(t, "2025-03-31", resp.RangeEnd)
				require.Len(t, resp.Days, 1)
				assert.Equal(t, "2025-03-03", resp.Days[0].Date)
				assert.Equal(t, 3, resp.Days[0].Total)
				assert.Equal(t, 0, resp.Days[0].Hidden)
			},
		},
		{
			name:  "Day cap hides overflow",
			query: "?month=2025-03&cap=1",
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.AllSources()).Return(events)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var resp struct {
					Events []json.RawMessage `json:"events"`
					Days   []struct {
						Events []struct {
							ID string `json:"id"`
						} `json:"events"`
						Total  int `json:"total"`
						Hidden int `json:"hidden"`
					} `json:"days"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Len(t, resp.Events, 3)
				require.Len(t, resp.Days, 1)
				require.Len(t, resp.Days[0].Events, 1)
				assert.Equal(t, "project-1", resp.Days[0].Events[0].ID)
				assert.Equal(t, 3, resp.Days[0].Total)
				assert.Equal(t, 2, resp.Days[0].Hidden)
			},
		},
		{
			name:  "Month defaults to the current one",
			query: "",
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.AllSources()).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","month":"2025-03","range_start":"2025-03-01","range_end":"2025-03-31","events":[],"days":[]}`,
		},
		{
			name:  "Filters switch sources off",
			query: "?month=2025-03&project=false&task=0",
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.Filters{Studio: true, External: true}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"events":[]`)
			},
		},
		{
			name:  "External token adds a source",
			query: "?month=2025-03",
			token: "ya29.token",
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.AllSources(), stub).Return(nil)
			},
			expectFactory:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:       "Broken external credentials only drop that source",
			query:      "?month=2025-03",
			token:      "bad",
			factoryErr: errors.New("invalid token"),
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.AllSources()).Return(events)
			},
			expectFactory:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:  "External filter off ignores the token",
			query: "?month=2025-03&external=false",
			token: "ya29.token",
			mockSetup: func(m *mocks.EventAggregator) {
				m.On("Aggregate", mock.Anything, march, calendar.Filters{Studio: true, Project: true, Task: true}).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed month",
			query:          "?month=March",
			mockSetup:      func(m *mocks.EventAggregator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"month must be YYYY-MM"}`,
		},
		{
			name:           "Malformed filter",
			query:          "?month=2025-03&studio=maybe",
			mockSetup:      func(m *mocks.EventAggregator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"filter studio must be true or false"}`,
		},
		{
			name:           "Malformed cap",
			query:          "?month=2025-03&cap=0",
			mockSetup:      func(m *mocks.EventAggregator) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"cap must be a positive integer"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockAggregator := mocks.NewEventAggregator(t)
			tc.mockSetup(mockAggregator)

			var factoryCalls atomic.Int32
			handler := New(logger, mockAggregator, Options{
				External: func(_ context.Context, token string) (calendar.Source, error) {
					factoryCalls.Add(1)
					assert.Equal(t, tc.token, token)
					if tc.factoryErr != nil {
						return nil, tc.factoryErr
					}
					return stub, nil
				},
				Now: func() time.Time { return time.Date(2025, 3, 18, 15, 0, 0, 0, time.UTC) },
			})

			req, err := http.NewRequest(http.MethodGet, "/calendar"+tc.query, nil)
			require.NoError(t, err)
			if tc.token != "" {
				req.Header.Set(TokenHeader, tc.token)
			}

			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}

			if tc.expectFactory {
				assert.Equal(t, int32(1), factoryCalls.Load())
			} else {
				assert.Zero(t, factoryCalls.Load())
			}
		})
	}
}
