package phms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindbloom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 0, nil)
}

func TestSlotsSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/slot/get", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":1,"date":"2025-04-15","start_time":"09:00","end_time":"09:30","status":"available"}]`))
	})

	slots, err := client.Slots(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, int64(1), slots[0].ID)
	assert.Equal(t, "09:00 - 09:30", slots[0].Label())
}

func TestSlotsUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"slots":[{"id":2,"date":"2025-04-16","start_time":"10:00","end_time":"10:30","status":"booked"}]}`))
	})

	slots, err := client.Slots(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.False(t, slots[0].Available())
}

func TestBookSlot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/slot/book", r.URL.Path)
		var req models.SlotBookRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.SlotBookRequest{Date: "2025-04-15", StartTime: "09:00", EndTime: "09:30"}, req)
		_, _ = w.Write([]byte(`{"slot":{"id":"7"}}`))
	})

	id, err := client.BookSlot(context.Background(), "tok", models.SlotBookRequest{Date: "2025-04-15", StartTime: "09:00", EndTime: "09:30"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestParseID(t *testing.T) {
	cases := map[string]int64{
		`12`:                   12,
		`"13"`:                 13,
		`{"id":14}`:            14,
		`{"slot_id":"15"}`:     15,
		`{"slotId":16}`:        16,
		`{"slot":{"id":17}}`:   17,
		` {"id": 18, "x": 1} `: 18,
	}
	for raw, want := range cases {
		got, err := parseID(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{``, `null`, `{"message":"ok"}`, `"abc"`} {
		_, err := parseID(json.RawMessage(raw))
		assert.Error(t, err, raw)
	}
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Appointments(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Slot already booked"}`))
	})

	_, err := client.BookSlot(context.Background(), "tok", models.SlotBookRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Slot already booked", apiErr.Error())
}

func TestAPIErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.CancelAppointment(context.Background(), "tok", 3)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "backend returned status 500", apiErr.Error())
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, 0, nil)

	_, err := client.Slots(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRescheduleAndStatus(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/api/appointment/cancel/9" {
			assert.Equal(t, "admin", r.Header.Get("role"))
			assert.Equal(t, models.OperationComplete, r.Header.Get("operation"))
		}
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	require.NoError(t, client.RescheduleAppointment(ctx, "tok", 4, models.RescheduleRequest{NewSlotID: 5, NewDate: "2025-04-16"}))
	require.NoError(t, client.SetAppointmentStatus(ctx, "tok", 9, models.OperationComplete))
	assert.Equal(t, []string{"PUT /api/appointment/reschedule/4", "PUT /api/appointment/cancel/9"}, seen)
}

func TestBookAppointmentUnwraps(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Appointment booked","appointment":{"id":10,"slot_id":1,"date":"2025-04-15","status":"booked"}}`))
	})

	appt, err := client.BookAppointment(context.Background(), "tok", models.AppointmentBookRequest{SlotID: 1, Date: "2025-04-15"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), appt.ID)
	assert.Equal(t, models.StatusBooked, appt.Status)
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	})

	resp, err := client.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)

	_, err = client.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "nope"})
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.EqualError(t, err, "Invalid email or password")
}
