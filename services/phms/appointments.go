package phms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"mindbloom/models"
)

// BookAppointment creates an appointment for an already booked slot.
func (c *Client) BookAppointment(ctx context.Context, token string, req models.AppointmentBookRequest) (*models.Appointment, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/appointment/book", token, req, &raw); err != nil {
		return nil, err
	}
	var appt models.Appointment
	if err := json.Unmarshal(unwrap(raw, "appointment"), &appt); err != nil {
		return nil, fmt.Errorf("failed to decode appointment: %w", err)
	}
	return &appt, nil
}

// CancelAppointment cancels an appointment owned by the token holder.
func (c *Client) CancelAppointment(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodPut, "/api/appointment/cancel/"+strconv.FormatInt(id, 10), token, nil, nil)
}

// RescheduleAppointment moves an appointment to another slot.
func (c *Client) RescheduleAppointment(ctx context.Context, token string, id int64, req models.RescheduleRequest) error {
	return c.do(ctx, http.MethodPut, "/api/appointment/reschedule/"+strconv.FormatInt(id, 10), token, req, nil)
}

// Appointments lists the token holder's appointments.
func (c *Client) Appointments(ctx context.Context, token string) ([]models.Appointment, error) {
	return c.listAppointments(ctx, "/api/appointment/get", token)
}

// TodaysAppointments lists every appointment of the day for the counsellor.
func (c *Client) TodaysAppointments(ctx context.Context, token string) ([]models.Appointment, error) {
	return c.listAppointments(ctx, "/api/appointment/getTodaysAppointments", token)
}

// SetAppointmentStatus is the counsellor variant of cancel: the backend reads
// the operation ("cancel" or "completed") from a header.
func (c *Client) SetAppointmentStatus(ctx context.Context, token string, id int64, operation string) error {
	return c.do(ctx, http.MethodPut, "/api/appointment/cancel/"+strconv.FormatInt(id, 10), token, nil, nil,
		withHeader("role", "admin"),
		withHeader("operation", operation),
	)
}

func (c *Client) listAppointments(ctx context.Context, path, token string) ([]models.Appointment, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}
	var appts []models.Appointment
	if err := json.Unmarshal(unwrap(raw, "appointments"), &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}
