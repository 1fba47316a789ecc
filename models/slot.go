package models

import "fmt"

// Slot statuses published by the backend.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

// Slot is a bookable date/time unit published by the backend.
type Slot struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`       // "2025-04-15"
	StartTime string `json:"start_time"` // "09:00"
	EndTime   string `json:"end_time"`   // "09:30"
	Status    string `json:"status"`
}

// Available reports whether the slot can still be booked.
func (s Slot) Available() bool {
	return s.Status == SlotAvailable
}

// Day is the calendar date of the slot, tolerant of full timestamps.
func (s Slot) Day() string {
	return DayOf(s.Date)
}

// Label is the time option shown to the user, e.g. "09:00 - 09:30".
func (s Slot) Label() string {
	return TimeLabel(s.StartTime, s.EndTime)
}

// TimeLabel formats a start/end pair the way time options are displayed.
func TimeLabel(start, end string) string {
	return fmt.Sprintf("%s - %s", start, end)
}

// DayOf trims an ISO timestamp down to its YYYY-MM-DD prefix.
func DayOf(date string) string {
	if len(date) >= 10 {
		return date[:10]
	}
	return date
}

// SlotBookRequest is the body of POST /api/slot/book.
type SlotBookRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
