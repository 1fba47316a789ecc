package models

import "time"

// Notice is an in-app message shown on the home page.
type Notice struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	UserKey       string `json:"userKey"`
	AppointmentID int64  `json:"appointmentId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	FireDate      string `json:"fireDate"`
}
