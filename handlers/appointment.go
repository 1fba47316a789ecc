package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/booking"
	"mindbloom/services/phms"
	"mindbloom/services/tasks"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentAPI is the backend surface used by the booking and history pages.
type AppointmentAPI interface {
	booking.API
	Appointments(ctx context.Context, token string) ([]models.Appointment, error)
}

// AppointmentHandler serves the booking flow. Each POST loads the flow from
// Redis, applies one operation and stores it again.
type AppointmentHandler struct {
	api       AppointmentAPI
	flows     *booking.FlowStore
	reminders tasks.Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

func NewAppointmentHandler(api AppointmentAPI, flows *booking.FlowStore, reminders tasks.Scheduler, logger *zap.Logger) *AppointmentHandler {
	if reminders == nil {
		reminders = tasks.NopScheduler{}
	}
	return &AppointmentHandler{api: api, flows: flows, reminders: reminders, logger: logger, now: time.Now}
}

type selectionInput struct {
	Date string `form:"date" json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time string `form:"time" json:"time"`
}

// Page renders the booking flow, fetching the slot list on every visit.
// ?reschedule=<id> seeds the flow with an existing appointment.
func (h *AppointmentHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	session := middleware.CurrentSession(c)

	state, err := h.flows.Load(ctx, session.ID)
	if err != nil {
		getLogger(c).Error("Failed to load booking flow", zap.Error(err))
	}
	flow := booking.NewFlow(h.api, session.Token, state, getLogger(c))

	var seedErr string
	if raw := c.Query("reschedule"); raw != "" {
		msg, err := h.seedReschedule(ctx, flow, session.Token, raw)
		if isUnauthorized(err) {
			expireSession(c)
			return
		}
		seedErr = msg
	}

	if err := flow.FetchAvailableSlots(ctx); isUnauthorized(err) {
		expireSession(c)
		return
	}
	h.save(c, session.ID, flow)
	// The seed message is shown once and not stored.
	if seedErr != "" && flow.Error == "" {
		flow.Error = seedErr
	}

	if utils.WantsJSON(c) {
		c.JSON(http.StatusOK, flow.State)
		return
	}
	render(c, http.StatusOK, "appointment.html", gin.H{
		"Title": "Book an Appointment",
		"Flow":  &flow.State,
	})
}

// seedReschedule loads the appointment named by raw into the flow. The
// returned message explains why it could not be loaded.
func (h *AppointmentHandler) seedReschedule(ctx context.Context, flow *booking.Flow, token, raw string) (string, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "That appointment could not be found.", nil
	}
	appts, err := h.api.Appointments(ctx, token)
	if err != nil {
		return booking.Message("load your appointment", err), err
	}
	appt, ok := booking.Find(appts, id)
	if !ok || !booking.Actionable(appt, h.now()) {
		return "That appointment can no longer be rescheduled.", nil
	}
	flow.LoadAppointment(appt)
	return "", nil
}

// SelectDate handles POST /appointment/select-date.
func (h *AppointmentHandler) SelectDate(c *gin.Context) {
	var in selectionInput
	if !h.bindSelection(c, &in) {
		return
	}
	h.apply(c, "select a date", false, func(_ context.Context, f *booking.Flow) error {
		return f.SelectDate(in.Date)
	})
}

// SelectTime handles POST /appointment/select-time. A date sent along is
// applied first so a single form can carry both.
func (h *AppointmentHandler) SelectTime(c *gin.Context) {
	var in selectionInput
	if !h.bindSelection(c, &in) {
		return
	}
	h.apply(c, "select a time", false, func(_ context.Context, f *booking.Flow) error {
		if in.Date != "" && in.Date != f.SelectedDate {
			if err := f.SelectDate(in.Date); err != nil {
				return err
			}
		}
		return f.SelectTime(in.Time)
	})
}

// Book handles POST /appointment/book.
func (h *AppointmentHandler) Book(c *gin.Context) {
	h.apply(c, "book your appointment", true, func(ctx context.Context, f *booking.Flow) error {
		if err := f.BookAppointment(ctx); err != nil {
			return err
		}
		h.scheduleReminder(c, f.Appointment)
		return nil
	})
}

// Cancel handles POST /appointment/cancel.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.apply(c, "cancel the appointment", true, func(ctx context.Context, f *booking.Flow) error {
		if err := f.CancelAppointment(ctx); err != nil {
			return err
		}
		withdrawReminder(c, h.reminders, f.Appointment.ID)
		return nil
	})
}

// BeginReschedule handles POST /appointment/begin-reschedule.
func (h *AppointmentHandler) BeginReschedule(c *gin.Context) {
	h.apply(c, "reschedule the appointment", false, func(_ context.Context, f *booking.Flow) error {
		return f.BeginReschedule()
	})
}

// Reschedule handles POST /appointment/reschedule.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	h.apply(c, "reschedule the appointment", true, func(ctx context.Context, f *booking.Flow) error {
		if err := f.RescheduleAppointment(ctx); err != nil {
			return err
		}
		h.scheduleReminder(c, f.Appointment)
		return nil
	})
}

// Refresh handles POST /appointment/refresh, the "Try again" button shown
// after a failure.
func (h *AppointmentHandler) Refresh(c *gin.Context) {
	h.apply(c, "load available slots", false, func(ctx context.Context, f *booking.Flow) error {
		return f.Retry(ctx)
	})
}

// Reset handles POST /appointment/reset and starts a new booking.
func (h *AppointmentHandler) Reset(c *gin.Context) {
	h.apply(c, "start a new booking", false, func(_ context.Context, f *booking.Flow) error {
		f.Reset()
		return nil
	})
}

// apply runs op against the session's stored flow. Network operations take
// the per-session lock so a double submit cannot reach the backend twice.
func (h *AppointmentHandler) apply(c *gin.Context, action string, locked bool, op func(context.Context, *booking.Flow) error) {
	ctx := c.Request.Context()
	session := middleware.CurrentSession(c)
	logger := getLogger(c)

	if locked {
		unlock, err := h.flows.Lock(ctx, session.ID)
		if err != nil {
			h.rejectInFlight(c, action, err)
			return
		}
		defer unlock()
	}

	state, err := h.flows.Load(ctx, session.ID)
	if err != nil {
		logger.Error("Failed to load booking flow", zap.Error(err))
	}
	flow := booking.NewFlow(h.api, session.Token, state, logger)

	opErr := op(ctx, flow)
	if opErr != nil && flow.Error == "" {
		flow.SetError(action, opErr)
	}
	h.save(c, session.ID, flow)

	if isUnauthorized(opErr) {
		expireSession(c)
		return
	}
	if utils.WantsJSON(c) {
		c.JSON(statusFor(opErr), flow.State)
		return
	}
	redirect(c, "/appointment")
}

// bindSelection answers the request itself when the form cannot be used.
func (h *AppointmentHandler) bindSelection(c *gin.Context, in *selectionInput) bool {
	fieldErrs, err := bind(c, in)
	if err == nil && len(fieldErrs) == 0 {
		return true
	}
	status, msg := http.StatusUnprocessableEntity, "Please choose a date from the list."
	if err != nil {
		getLogger(c).Info("Unreadable booking form", zap.Error(err))
		status, msg = http.StatusBadRequest, badInputMessage
	}
	if utils.WantsJSON(c) {
		c.JSON(status, utils.ErrorResponse{Message: msg})
		return false
	}
	middleware.CurrentSession(c).Flash = msg
	redirect(c, "/appointment")
	return false
}

func (h *AppointmentHandler) rejectInFlight(c *gin.Context, action string, err error) {
	if !errors.Is(err, booking.ErrInFlight) {
		getLogger(c).Error("Failed to take booking lock", zap.Error(err))
	}
	msg := booking.Message(action, booking.ErrInFlight)
	if utils.WantsJSON(c) {
		c.JSON(http.StatusConflict, utils.ErrorResponse{Message: msg})
		return
	}
	middleware.CurrentSession(c).Flash = msg
	redirect(c, "/appointment")
}

func (h *AppointmentHandler) save(c *gin.Context, sessionID string, flow *booking.Flow) {
	if err := h.flows.Save(c.Request.Context(), sessionID, flow.State); err != nil {
		getLogger(c).Error("Failed to save booking flow", zap.Error(err))
	}
}

// scheduleReminder failures never fail the booking itself.
func (h *AppointmentHandler) scheduleReminder(c *gin.Context, appt *models.Appointment) {
	if appt == nil {
		return
	}
	key := userKey(middleware.CurrentSession(c))
	if key == "" {
		return
	}
	if err := h.reminders.ScheduleReminder(c.Request.Context(), key, *appt); err != nil {
		getLogger(c).Warn("Failed to schedule reminder", zap.Int64("appointmentID", appt.ID), zap.Error(err))
	}
}

// withdrawReminder drops the queued reminder of a canceled appointment.
func withdrawReminder(c *gin.Context, reminders tasks.Scheduler, appointmentID int64) {
	if reminders == nil {
		return
	}
	if err := reminders.CancelReminder(c.Request.Context(), appointmentID); err != nil {
		getLogger(c).Warn("Failed to withdraw reminder", zap.Int64("appointmentID", appointmentID), zap.Error(err))
	}
}

// userKey identifies the user for reminders and notices.
func userKey(session *utils.WebSession) string {
	if claims, err := utils.DecodeToken(session.Token); err == nil {
		if id := claims.Identity(); id != "" {
			return id
		}
	}
	return session.Email
}

func statusFor(err error) int {
	var apiErr *phms.APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, booking.ErrMissingSelection),
		errors.Is(err, booking.ErrUnknownTime),
		errors.Is(err, booking.ErrNoAppointment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrInvalidTransition), errors.Is(err, booking.ErrInFlight):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		// Client errors from the backend are passed through.
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, phms.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
