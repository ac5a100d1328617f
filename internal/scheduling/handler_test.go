package scheduling

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook-ai/scheduling-agent/internal/calendar"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

func testHandler(t *testing.T, seed ...calendar.Appointment) (*Handler, calendar.Store) {
	t.Helper()
	store := calendar.NewMemoryStore(map[calendar.Weekday]calendar.WorkingHours{
		calendar.Monday: {Start: tod(t, "09:00"), End: tod(t, "12:00")},
	}, seed)
	engine := NewEngine(store, DefaultTypeCatalog())
	return NewHandler(engine, store, logging.Default()), store
}

func TestGetAvailabilityOK(t *testing.T) {
	handler, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/calendly/availability?date="+monday+"&appointment_type=General+Consultation", nil)
	rec := httptest.NewRecorder()
	handler.GetAvailability(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp AvailabilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, monday, resp.Date)
	require.Len(t, resp.AvailableSlots, 13)
	assert.Equal(t, "09:00", resp.AvailableSlots[0].StartTime.String())
}

func TestGetAvailabilityBadRequest(t *testing.T) {
	handler, _ := testHandler(t)

	cases := []struct {
		name  string
		query string
	}{
		{"unknown type", "date=" + monday + "&appointment_type=Palm+Reading"},
		{"bad date", "date=09/07/2026&appointment_type=General+Consultation"},
		{"missing params", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/calendly/availability?"+tc.query, nil)
			rec := httptest.NewRecorder()
			handler.GetAvailability(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func bookBody(t *testing.T, req BookingRequest) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(req))
	return &buf
}

func TestBookAppointmentOK(t *testing.T) {
	handler, store := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/calendly/book", bookBody(t, validBooking("10:00")))
	rec := httptest.NewRecorder()
	handler.BookAppointment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var conf BookingConfirmation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conf))
	assert.Equal(t, "confirmed", conf.Status)
	assert.True(t, strings.HasPrefix(conf.BookingID, "APPT-"))

	appts, err := store.AppointmentsOn(req.Context(), monday)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestBookAppointmentConflict(t *testing.T) {
	handler, _ := testHandler(t, seedAppointment(t, "09:45", 30))

	req := httptest.NewRequest(http.MethodPost, "/calendly/book", bookBody(t, validBooking("10:00")))
	rec := httptest.NewRecorder()
	handler.BookAppointment(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookAppointmentBadRequest(t *testing.T) {
	handler, _ := testHandler(t)

	outside := validBooking("08:00")
	req := httptest.NewRequest(http.MethodPost, "/calendly/book", bookBody(t, outside))
	rec := httptest.NewRecorder()
	handler.BookAppointment(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/calendly/book", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	handler.BookAppointment(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAppointments(t *testing.T) {
	handler, _ := testHandler(t, seedAppointment(t, "10:00", 30))

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments?date="+monday, nil)
	rec := httptest.NewRecorder()
	handler.ListAppointments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Date         string                 `json:"date"`
		Appointments []calendar.Appointment `json:"appointments"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, monday, resp.Date)
	assert.Len(t, resp.Appointments, 1)

	req = httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec = httptest.NewRecorder()
	handler.ListAppointments(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
