package booking

import (
	"context"
	"sort"
	"strings"

	"mindbloom/models"

	"go.uber.org/zap"
)

// Phase is the step of the booking flow being displayed.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseLoading      Phase = "loading"
	PhaseConfirmed    Phase = "confirmed"
	PhaseError        Phase = "error"
	PhaseRescheduling Phase = "rescheduling"
)

// Mode tells whether the date/time selection books a new appointment or
// moves the current one.
type Mode string

const (
	ModeBook       Mode = "book"
	ModeReschedule Mode = "reschedule"
)

// API is the slice of the backend the flow needs.
type API interface {
	Slots(ctx context.Context, token string) ([]models.Slot, error)
	BookSlot(ctx context.Context, token string, req models.SlotBookRequest) (int64, error)
	BookAppointment(ctx context.Context, token string, req models.AppointmentBookRequest) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, token string, id int64) error
	RescheduleAppointment(ctx context.Context, token string, id int64, req models.RescheduleRequest) error
}

// State is everything the booking page renders. It is stored between
// requests, so it holds data only.
type State struct {
	Phase         Phase               `json:"phase"`
	Mode          Mode                `json:"mode"`
	Slots         []models.Slot       `json:"slots"`
	Dates         []string            `json:"dates"`
	Times         []string            `json:"times"`
	SelectedDate  string              `json:"selectedDate"`
	SelectedTime  string              `json:"selectedTime"`
	SlotID        int64               `json:"slotId"`
	Appointment   *models.Appointment `json:"appointment,omitempty"`
	ConfirmedTime string              `json:"confirmedTime,omitempty"`
	Error         string              `json:"error,omitempty"`
	ErrorAction   string              `json:"errorAction,omitempty"`
	Notice        string              `json:"notice,omitempty"`
}

// NewState is the state of a flow nobody has touched yet.
func NewState() State {
	return State{Phase: PhaseIdle, Mode: ModeBook}
}

// Selecting reports whether the date/time form is on screen.
func (s *State) Selecting() bool {
	return s.Phase != PhaseConfirmed && s.Phase != PhaseLoading
}

// CanSubmit mirrors the disabled state of the submit button.
func (s *State) CanSubmit() bool {
	return s.Selecting() && s.SelectedDate != "" && s.SelectedTime != "" && s.SlotID != 0
}

// Flow drives one user's booking state against the backend.
type Flow struct {
	State
	api    API
	token  string
	logger *zap.Logger
}

// NewFlow wraps a stored state. token is the user's bearer token.
func NewFlow(api API, token string, state State, logger *zap.Logger) *Flow {
	if state.Phase == "" {
		state.Phase = PhaseIdle
	}
	if state.Mode == "" {
		state.Mode = ModeBook
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{State: state, api: api, token: token, logger: logger}
}

const actionLoadSlots = "load available slots"

// FetchAvailableSlots loads the slot list and derives the selectable dates.
// A failure leaves a retryable message; nothing is retried automatically.
// An error left by another action stays on screen until the user acts on it.
func (f *Flow) FetchAvailableSlots(ctx context.Context) error {
	prev := f.Phase
	pending := f.Error != "" && f.ErrorAction != actionLoadSlots
	f.Phase = PhaseLoading

	slots, err := f.api.Slots(ctx, f.token)
	if err != nil {
		f.logger.Warn("Failed to fetch slots", zap.Error(err))
		f.Phase = failedPhase(prev)
		f.SetError(actionLoadSlots, err)
		return err
	}

	f.Phase = settledPhase(prev, f.Mode)
	if pending {
		if prev == PhaseError {
			f.Phase = PhaseError
		}
	} else {
		f.Error = ""
	}
	f.applySlots(slots)
	return nil
}

// Retry clears the error on screen and loads the slot list again.
func (f *Flow) Retry(ctx context.Context) error {
	f.Error = ""
	return f.FetchAvailableSlots(ctx)
}

// SetError records the message shown for err. action completes
// "Failed to ...".
func (f *Flow) SetError(action string, err error) {
	f.Error = Message(action, err)
	f.ErrorAction = action
}

// SelectDate picks a date and recomputes its available times. The time
// selection is cleared.
func (f *Flow) SelectDate(date string) error {
	if !f.Selecting() {
		return ErrInvalidTransition
	}
	f.SelectedDate = strings.TrimSpace(date)
	f.SelectedTime = ""
	f.SlotID = 0
	f.Times = timesFor(f.Slots, f.SelectedDate)
	f.Error = ""
	f.Notice = ""
	if f.SelectedDate != "" && len(f.Times) == 0 {
		f.Notice = "There are no available times on that date."
	}
	return nil
}

// SelectTime resolves the time label to the id of an available slot on the
// selected date.
func (f *Flow) SelectTime(label string) error {
	if !f.Selecting() {
		return ErrInvalidTransition
	}
	label = strings.TrimSpace(label)
	f.SelectedTime = ""
	f.SlotID = 0
	if label == "" {
		return nil
	}
	slot, ok := findSlot(f.Slots, f.SelectedDate, label)
	if !ok {
		f.SetError("select a time", ErrUnknownTime)
		return ErrUnknownTime
	}
	f.SelectedTime = label
	f.SlotID = slot.ID
	f.Error = ""
	return nil
}

// BookAppointment books the selected slot and then the appointment on it.
// Nothing is sent unless date, time and slot are all set.
func (f *Flow) BookAppointment(ctx context.Context) error {
	if f.Phase == PhaseConfirmed || f.Mode != ModeBook {
		return ErrInvalidTransition
	}
	if f.SelectedDate == "" || f.SelectedTime == "" || f.SlotID == 0 {
		f.SetError("book your appointment", ErrMissingSelection)
		return ErrMissingSelection
	}

	prev := f.Phase
	f.Phase = PhaseLoading
	start, end := f.window()

	slotID, err := f.api.BookSlot(ctx, f.token, models.SlotBookRequest{
		Date:      f.SelectedDate,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return f.fail(prev, "book your appointment", err)
	}

	appt, err := f.api.BookAppointment(ctx, f.token, models.AppointmentBookRequest{
		SlotID: slotID,
		Date:   f.SelectedDate,
	})
	if err != nil {
		f.logger.Warn("Slot booked but appointment booking failed", zap.Int64("slotID", slotID), zap.Error(err))
		return f.fail(prev, "book your appointment", err)
	}
	if appt.SlotID == 0 {
		appt.SlotID = slotID
	}
	if appt.Slot == nil {
		appt.Slot = &models.AppointmentSlot{StartTime: start, EndTime: end}
	}

	f.Appointment = appt
	f.ConfirmedTime = f.SelectedTime
	f.Phase = PhaseConfirmed
	f.Error = ""
	f.Notice = "Appointment Confirmed!"
	f.logger.Info("Appointment booked", zap.Int64("appointmentID", appt.ID), zap.String("date", appt.Date))
	f.refresh(ctx)
	return nil
}

// CancelAppointment cancels the current appointment and returns the flow to
// idle.
func (f *Flow) CancelAppointment(ctx context.Context) error {
	if f.Appointment == nil {
		f.SetError("cancel the appointment", ErrNoAppointment)
		return ErrNoAppointment
	}

	prev := f.Phase
	f.Phase = PhaseLoading
	if err := f.api.CancelAppointment(ctx, f.token, f.Appointment.ID); err != nil {
		return f.fail(prev, "cancel the appointment", err)
	}

	f.Appointment.Status = models.StatusCanceled
	f.Phase = PhaseIdle
	f.Mode = ModeBook
	f.clearSelection()
	f.ConfirmedTime = ""
	f.Error = ""
	f.Notice = "Your appointment has been canceled."
	f.logger.Info("Appointment canceled", zap.Int64("appointmentID", f.Appointment.ID))
	f.refresh(ctx)
	return nil
}

// BeginReschedule re-enters date/time selection for the confirmed appointment.
func (f *Flow) BeginReschedule() error {
	if f.Phase != PhaseConfirmed || f.Appointment == nil || !f.Appointment.Active() {
		return ErrInvalidTransition
	}
	f.Phase = PhaseRescheduling
	f.Mode = ModeReschedule
	f.clearSelection()
	f.Error = ""
	f.Notice = ""
	return nil
}

// LoadAppointment starts rescheduling an appointment picked elsewhere, e.g.
// from the history page.
func (f *Flow) LoadAppointment(appt models.Appointment) {
	f.Appointment = &appt
	f.Phase = PhaseRescheduling
	f.Mode = ModeReschedule
	f.ConfirmedTime = appt.TimeLabel()
	f.clearSelection()
	f.Error = ""
	f.Notice = ""
}

// RescheduleAppointment moves the current appointment to the selected slot.
func (f *Flow) RescheduleAppointment(ctx context.Context) error {
	if f.Appointment == nil {
		f.SetError("reschedule the appointment", ErrNoAppointment)
		return ErrNoAppointment
	}
	if f.Mode != ModeReschedule || f.Phase == PhaseConfirmed {
		return ErrInvalidTransition
	}
	if f.SelectedDate == "" || f.SelectedTime == "" || f.SlotID == 0 {
		f.SetError("reschedule the appointment", ErrMissingSelection)
		return ErrMissingSelection
	}

	prev := f.Phase
	f.Phase = PhaseLoading
	err := f.api.RescheduleAppointment(ctx, f.token, f.Appointment.ID, models.RescheduleRequest{
		NewSlotID: f.SlotID,
		NewDate:   f.SelectedDate,
	})
	if err != nil {
		return f.fail(prev, "reschedule the appointment", err)
	}

	start, end := f.window()
	f.Appointment.SlotID = f.SlotID
	f.Appointment.Date = f.SelectedDate
	f.Appointment.Status = models.StatusRescheduled
	f.Appointment.Slot = &models.AppointmentSlot{StartTime: start, EndTime: end}
	f.ConfirmedTime = f.SelectedTime
	f.Phase = PhaseConfirmed
	f.Mode = ModeBook
	f.Error = ""
	f.Notice = "Your appointment has been rescheduled."
	f.logger.Info("Appointment rescheduled", zap.Int64("appointmentID", f.Appointment.ID), zap.String("date", f.SelectedDate))
	f.refresh(ctx)
	return nil
}

// Reset discards the flow and starts a new booking on the same slot list.
func (f *Flow) Reset() {
	slots := f.Slots
	f.State = NewState()
	f.applySlots(slots)
}

// fail records err for display. Book failures land in the error step;
// failures while a confirmation or a reschedule is on screen keep that
// screen so the user can retry from it.
func (f *Flow) fail(prev Phase, action string, err error) error {
	f.Phase = failedPhase(prev)
	f.SetError(action, err)
	f.logger.Warn("Booking flow request failed", zap.String("action", action), zap.Error(err))
	return err
}

// refresh re-fetches the slot list after a mutation. Its failure is logged
// only; the mutation itself already succeeded.
func (f *Flow) refresh(ctx context.Context) {
	slots, err := f.api.Slots(ctx, f.token)
	if err != nil {
		f.logger.Warn("Failed to refresh slots after update", zap.Error(err))
		return
	}
	f.applySlots(slots)
}

// applySlots replaces the slot list. A selected time whose slot is no longer
// available is dropped so it cannot be submitted.
func (f *Flow) applySlots(slots []models.Slot) {
	f.Slots = slots
	f.Dates = availableDates(slots)
	f.Times = timesFor(slots, f.SelectedDate)
	if !f.Selecting() || f.SelectedTime == "" {
		return
	}
	slot, ok := findSlot(slots, f.SelectedDate, f.SelectedTime)
	if !ok {
		f.logger.Info("Selected slot is no longer available",
			zap.String("date", f.SelectedDate),
			zap.String("time", f.SelectedTime),
			zap.Int64("slotID", f.SlotID),
		)
		f.SelectedTime = ""
		f.SlotID = 0
		f.Notice = "The time you picked is no longer available. Please choose another one."
		return
	}
	f.SlotID = slot.ID
}

func (f *Flow) clearSelection() {
	f.SelectedDate = ""
	f.SelectedTime = ""
	f.SlotID = 0
	f.Times = nil
}

// window returns the start and end time of the selected slot, falling back
// to the "start - end" label when the slot has left the list.
func (f *Flow) window() (string, string) {
	for _, s := range f.Slots {
		if s.ID == f.SlotID {
			return s.StartTime, s.EndTime
		}
	}
	start, end, _ := strings.Cut(f.SelectedTime, " - ")
	return strings.TrimSpace(start), strings.TrimSpace(end)
}

func failedPhase(prev Phase) Phase {
	switch prev {
	case PhaseConfirmed, PhaseRescheduling:
		return prev
	default:
		return PhaseError
	}
}

func settledPhase(prev Phase, mode Mode) Phase {
	switch {
	case prev == PhaseConfirmed:
		return PhaseConfirmed
	case mode == ModeReschedule:
		return PhaseRescheduling
	default:
		return PhaseIdle
	}
}

// availableDates returns the sorted distinct dates holding an available slot.
func availableDates(slots []models.Slot) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, s := range slots {
		if !s.Available() {
			continue
		}
		day := s.Day()
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}
	sort.Strings(dates)
	return dates
}

// timesFor returns the labels of available slots on date, ordered by start.
func timesFor(slots []models.Slot, date string) []string {
	if date == "" {
		return nil
	}
	var matching []models.Slot
	for _, s := range slots {
		if s.Available() && s.Day() == date {
			matching = append(matching, s)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].StartTime < matching[j].StartTime
	})

	seen := make(map[string]struct{}, len(matching))
	times := make([]string, 0, len(matching))
	for _, s := range matching {
		label := s.Label()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		times = append(times, label)
	}
	return times
}

func findSlot(slots []models.Slot, date, label string) (models.Slot, bool) {
	for _, s := range slots {
		if s.Available() && s.Day() == date && s.Label() == label {
			return s, true
		}
	}
	return models.Slot{}, false
}
