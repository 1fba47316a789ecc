package models

// Appointment statuses.
const (
	StatusBooked      = "booked"
	StatusRescheduled = "rescheduled"
	StatusCompleted   = "completed"
	StatusCanceled    = "canceled"
)

// AppointmentSlot is the time window embedded in an appointment.
type AppointmentSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Appointment is a user's booking against a slot.
type Appointment struct {
	ID     int64            `json:"id"`
	SlotID int64            `json:"slot_id"`
	Date   string           `json:"date"`
	Status string           `json:"status"`
	Slot   *AppointmentSlot `json:"slot,omitempty"`
	User   *AppointmentUser `json:"user,omitempty"`
}

// AppointmentUser is the patient summary the counsellor dashboard receives.
type AppointmentUser struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile,omitempty"`
}

// Active reports whether the appointment still holds its slot.
func (a Appointment) Active() bool {
	return a.Status == StatusBooked || a.Status == StatusRescheduled
}

// Day is the calendar date of the appointment.
func (a Appointment) Day() string {
	return DayOf(a.Date)
}

// TimeLabel renders the slot window or a placeholder.
func (a Appointment) TimeLabel() string {
	if a.Slot == nil {
		return "Time not specified"
	}
	return TimeLabel(a.Slot.StartTime, a.Slot.EndTime)
}

// AppointmentBookRequest is the body of POST /api/appointment/book.
type AppointmentBookRequest struct {
	SlotID int64  `json:"slot_id"`
	Date   string `json:"date"`
}

// RescheduleRequest is the body of PUT /api/appointment/reschedule/:id.
type RescheduleRequest struct {
	NewSlotID int64  `json:"new_slot_id"`
	NewDate   string `json:"new_date"`
}

// Counsellor operations sent with PUT /api/appointment/cancel/:id.
const (
	OperationCancel   = "cancel"
	OperationComplete = "completed"
)
