package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practitioner-scheduling/internal/appointment"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/messaging"
	"github.com/hackgods/practitioner-scheduling/internal/metrics"
	redisclient "github.com/hackgods/practitioner-scheduling/internal/redis"
)

// Monday 2030-01-07.
var testNow = time.Date(2030, 1, 7, 8, 0, 0, 0, time.UTC)

type testServer struct {
	handler      http.Handler
	practitioner uuid.UUID
	patient      uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ts := &testServer{practitioner: uuid.New(), patient: uuid.New()}

	availRepo := availability.NewMemoryRepository()
	availRepo.AddPractitioner(ts.practitioner)

	apptRepo := appointment.NewMemoryRepository()
	apptRepo.AddPractitioner(appointment.Practitioner{ID: ts.practitioner, Name: "Dr. Rivera"})
	apptRepo.AddPatient(appointment.Patient{ID: ts.patient, Name: "Sam Patel"})

	reg := prometheus.NewRegistry()
	locker := redisclient.NewRedisSlotLocker(client, 5*time.Second, time.Second)

	ts.handler = NewRouter(RouterConfig{
		Availability: availability.NewService(availRepo, nil),
		Appointments: appointment.NewService(apptRepo, availRepo, locker, nil,
			appointment.WithMetrics(metrics.NewBookingMetrics(reg)),
			appointment.WithClock(func() time.Time { return testNow }),
		),
		Messaging: messaging.NewService(messaging.NewMemoryRepository(), nil, metrics.NewMessagingMetrics(reg)),
		Health:    NewHealthHandler(RedisPinger(client), RedisPinger(client), "test", "v0"),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) setAvailability(t *testing.T) {
	t.Helper()
	rec := ts.do(t, http.MethodPut, "/practitioners/"+ts.practitioner.String()+"/availability", SetAvailabilityRequest{
		StartTime:   "09:00",
		EndTime:     "10:00",
		WorkingDays: []string{"mon", "tue", "wed", "thu", "fri"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAvailabilityEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/practitioners/"+ts.practitioner.String()+"/availability", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "availability_not_set", decode[ErrorResponse](t, rec).Error)

	ts.setAvailability(t)

	rec = ts.do(t, http.MethodGet, "/practitioners/"+ts.practitioner.String()+"/availability", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[AvailabilityResponse](t, rec)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "10:00", got.EndTime)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, got.WorkingDays)

	rec = ts.do(t, http.MethodPut, "/practitioners/"+ts.practitioner.String()+"/availability", SetAvailabilityRequest{
		StartTime:   "11:00",
		EndTime:     "10:00",
		WorkingDays: []string{"mon"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_availability", decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodPut, "/practitioners/"+ts.practitioner.String()+"/availability", map[string]any{
		"start_time": "09:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, rec).Error)
}

func TestBookingFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.setAvailability(t)

	slotsPath := "/practitioners/" + ts.practitioner.String() + "/slots?date=2030-01-07"
	rec := ts.do(t, http.MethodGet, slotsPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"09:00", "09:30"}, decode[SlotsResponse](t, rec).Slots)

	book := BookAppointmentRequest{
		PractitionerID: ts.practitioner.String(),
		PatientID:      ts.patient.String(),
		Date:           "2030-01-07",
		TimeSlot:       "09:00",
	}
	rec = ts.do(t, http.MethodPost, "/appointments", book)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[AppointmentResponse](t, rec)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, "2030-01-07", created.Date)

	rec = ts.do(t, http.MethodPost, "/appointments", book)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot_already_booked", decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodGet, slotsPath, nil)
	assert.Equal(t, []string{"09:30"}, decode[SlotsResponse](t, rec).Slots)

	rec = ts.do(t, http.MethodGet, "/appointments/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dr. Rivera", decode[AppointmentResponse](t, rec).PractitionerName)

	rec = ts.do(t, http.MethodGet, "/appointments?party_id="+ts.patient.String()+"&role=patient", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[AppointmentListResponse](t, rec)
	require.Len(t, list.Upcoming, 1)
	assert.Empty(t, list.Past)

	rec = ts.do(t, http.MethodPost, "/appointments/"+created.ID.String()+"/cancel", CancelAppointmentRequest{RequesterID: uuid.NewString()})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_a_party", decode[ErrorResponse](t, rec).Error)

	for range 2 {
		rec = ts.do(t, http.MethodPost, "/appointments/"+created.ID.String()+"/cancel", CancelAppointmentRequest{RequesterID: ts.patient.String()})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "cancelled", decode[AppointmentResponse](t, rec).Status)
	}

	rec = ts.do(t, http.MethodGet, slotsPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"09:00", "09:30"}, decode[SlotsResponse](t, rec).Slots)

	rec = ts.do(t, http.MethodPost, "/appointments/"+created.ID.String()+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_status_transition", decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodGet, "/appointments?party_id="+ts.practitioner.String()+"&role=practitioner", nil)
	list = decode[AppointmentListResponse](t, rec)
	assert.Empty(t, list.Upcoming)
	require.Len(t, list.Past, 1)
}

func TestBookingValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.setAvailability(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed json", "not json", http.StatusBadRequest, "invalid_request_body"},
		{"missing fields", map[string]string{"date": "2030-01-07"}, http.StatusBadRequest, "invalid_request"},
		{"bad date", BookAppointmentRequest{
			PractitionerID: ts.practitioner.String(), PatientID: ts.patient.String(), Date: "07/01/2030", TimeSlot: "09:00",
		}, http.StatusBadRequest, "invalid_date"},
		{"past date", BookAppointmentRequest{
			PractitionerID: ts.practitioner.String(), PatientID: ts.patient.String(), Date: "2030-01-06", TimeSlot: "09:00",
		}, http.StatusBadRequest, "past_date_rejected"},
		{"unknown patient", BookAppointmentRequest{
			PractitionerID: ts.practitioner.String(), PatientID: uuid.NewString(), Date: "2030-01-07", TimeSlot: "09:00",
		}, http.StatusNotFound, "patient_not_found"},
		{"outside window", BookAppointmentRequest{
			PractitionerID: ts.practitioner.String(), PatientID: ts.patient.String(), Date: "2030-01-07", TimeSlot: "10:00",
		}, http.StatusBadRequest, "slot_out_of_availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestListAppointmentsRejectsBadRole(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/appointments?party_id="+ts.patient.String()+"&role=admin", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_role", decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodGet, "/appointments?party_id=nope&role=patient", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagingFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/messages", SendMessageRequest{
		SenderID:    ts.patient.String(),
		RecipientID: ts.practitioner.String(),
		Body:        "Running ten minutes late",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/conversations?party_id="+ts.practitioner.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs := decode[[]ConversationResponse](t, rec)
	require.Len(t, convs, 1)
	assert.Equal(t, ts.patient, convs[0].CounterpartID)
	assert.Equal(t, 1, convs[0].UnreadCount)

	rec = ts.do(t, http.MethodPost, "/conversations/"+ts.patient.String()+"/read?party_id="+ts.practitioner.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[MarkReadResponse](t, rec).Marked)

	rec = ts.do(t, http.MethodGet, "/conversations/"+ts.patient.String()+"/messages?party_id="+ts.practitioner.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread := decode[[]MessageResponse](t, rec)
	require.Len(t, thread, 1)
	assert.NotNil(t, thread[0].ReadAt)

	rec = ts.do(t, http.MethodPost, "/messages", SendMessageRequest{
		SenderID:    ts.patient.String(),
		RecipientID: ts.patient.String(),
		Body:        "hi",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[ReadinessResponse](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessStates(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("unreachable") })

	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		status   int
		want     string
	}{
		{"all up", up, up, http.StatusOK, "ok"},
		{"redis down", up, down, http.StatusOK, "degraded"},
		{"postgres down", down, up, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.postgres, tt.redis, "test", "v0")
			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, decode[ReadinessResponse](t, rec).Status)
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
