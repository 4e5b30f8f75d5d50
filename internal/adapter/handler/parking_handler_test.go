package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/srgjo27/smart_parking/internal/adapter/handler"
	"github.com/srgjo27/smart_parking/internal/adapter/repository/memory"
	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newServer(t *testing.T, checks map[string]handler.Check) *httptest.Server {
	store := memory.NewStore(domain.Lot{Name: "main", Capacity: 5})
	store.AddSubscriber(domain.Subscriber{Code: 42, FirstName: "Noa", Email: "noa@example.com"})

	locker := services.NewLotLocker()
	availability := services.NewAvailabilityService(store.Lots(), store.Sessions(), store.Orders(), nil, "main")
	availability.SetClock(clock)

	reservations := services.NewReservationService(store.Subscribers(), store.Orders(), store.Lots(), availability, locker)
	reservations.SetClock(clock)

	sessions := services.NewSessionService(store.Subscribers(), store.Sessions(), store.Lots(), reservations, availability, nil, locker)
	sessions.SetClock(clock)

	reports := services.NewReportService(store.Sessions(), store.Orders(), store.Reports(), time.UTC)
	reports.SetClock(clock)

	parking := handler.NewParkingHandler(reservations, sessions, availability, reports, time.UTC)
	server := httptest.NewServer(handler.NewRouter(parking, handler.NewHealthHandler(checks)))
	t.Cleanup(server.Close)

	return server
}

type envelope struct {
	Succeeded bool            `json:"succeeded"`
	Payload   json.RawMessage `json:"payload"`
	Message   string          `json:"message"`
}

func call(t *testing.T, server *httptest.Server, operation string, args interface{}) (int, envelope) {
	t.Helper()

	rawArgs, err := json.Marshal(args)
	require.NoError(t, err)
	body, err := json.Marshal(handler.Request{Operation: operation, Args: rawArgs})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/operations", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

func TestOperations_BookingThenConflict(t *testing.T) {
	server := newServer(t, nil)

	status, env := call(t, server, "addOrder", map[string]interface{}{"subscriber_code": 42, "date": "2026-10-17", "time": "10:00"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.True(t, env.Succeeded)

	var order domain.Order
	require.NoError(t, json.Unmarshal(env.Payload, &order))
	assert.Regexp(t, `^\d{6}$`, order.ConfirmationCode)

	status, env = call(t, server, "checkConflict", map[string]interface{}{"subscriber_code": 42, "date": "2026-10-17", "time": "13:00"})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "true", string(env.Payload))

	status, env = call(t, server, "addOrder", map[string]interface{}{"subscriber_code": 42, "date": "2026-10-17", "time": "13:00"})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Succeeded)
	assert.Equal(t, domain.ErrReservationConflict.Message, env.Message)
}

func TestOperations_EntryAndCollect(t *testing.T) {
	server := newServer(t, nil)

	status, env := call(t, server, "enterWithoutReservation", map[string]interface{}{"subscriber_code": 42, "vehicle_id": "12-345-67"})
	require.Equal(t, http.StatusOK, status, env.Message)

	var event domain.ParkingEvent
	require.NoError(t, json.Unmarshal(env.Payload, &event))
	assert.Equal(t, 1, event.SpaceNumber)

	status, env = call(t, server, "stats", map[string]interface{}{"lot": "main"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"lot":"main","total":5,"occupied":1,"upcoming_within_next_4h":0,"available":4}`, string(env.Payload))

	status, _ = call(t, server, "verifySubscriber", map[string]interface{}{"subscriber_code": 42})
	assert.Equal(t, http.StatusConflict, status)

	wrong := "000000"
	if event.ParkingCode == wrong {
		wrong = "111111"
	}
	status, env = call(t, server, "collectVehicle", map[string]interface{}{"subscriber_code": 42, "parking_code": wrong})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.ErrInvalidParkingCode.Message, env.Message)

	status, env = call(t, server, "collectVehicle", map[string]interface{}{"subscriber_code": 42, "parking_code": event.ParkingCode})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, env.Message, string(domain.StatusOnTime))
}

func TestOperations_ErrorMapping(t *testing.T) {
	server := newServer(t, nil)

	tests := []struct {
		name      string
		operation string
		args      interface{}
		want      int
	}{
		{"unknown operation", "teleport", map[string]interface{}{}, http.StatusBadRequest},
		{"malformed arrival", "addOrder", map[string]interface{}{"subscriber_code": 42, "date": "17/10/2026", "time": "10:00"}, http.StatusBadRequest},
		{"unknown subscriber", "verifySubscriber", map[string]interface{}{"subscriber_code": 7}, http.StatusNotFound},
		{"no active session", "extendSession", map[string]interface{}{"subscriber_code": 42, "parking_code": "123456"}, http.StatusNotFound},
		{"unknown lot", "stats", map[string]interface{}{"lot": "west"}, http.StatusNotFound},
		{"notifier not configured", "resendParkingCode", map[string]interface{}{"subscriber_code": 42}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, server, tt.operation, tt.args)
			assert.Equal(t, tt.want, status)
			assert.False(t, env.Succeeded)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestHandleOperation_RejectsBadRequests(t *testing.T) {
	server := newServer(t, nil)

	resp, err := http.Get(server.URL + "/operations")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(server.URL+"/operations", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsRoute(t *testing.T) {
	server := newServer(t, nil)

	resp, err := http.Get(server.URL + "/lots/main/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.JSONEq(t, `{"lot":"main","total":5,"occupied":0,"upcoming_within_next_4h":0,"available":5}`, string(env.Payload))
}

func TestHealth(t *testing.T) {
	healthy := newServer(t, map[string]handler.Check{
		"store": func(context.Context) error { return nil },
	})
	resp, err := http.Get(healthy.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	degraded := newServer(t, map[string]handler.Check{
		"store": func(context.Context) error { return errors.New("connection refused") },
	})
	resp, err = http.Get(degraded.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
