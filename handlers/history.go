package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/booking"
	"mindbloom/services/tasks"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryAPI is the backend surface used by the history page.
type HistoryAPI interface {
	Appointments(ctx context.Context, token string) ([]models.Appointment, error)
	CancelAppointment(ctx context.Context, token string, id int64) error
}

type HistoryHandler struct {
	api       HistoryAPI
	flows     *booking.FlowStore
	reminders tasks.Scheduler
	now       func() time.Time
}

func NewHistoryHandler(api HistoryAPI, flows *booking.FlowStore, reminders tasks.Scheduler) *HistoryHandler {
	if reminders == nil {
		reminders = tasks.NopScheduler{}
	}
	return &HistoryHandler{api: api, flows: flows, reminders: reminders, now: time.Now}
}

type historyView struct {
	models.Appointment
	Actionable bool
}

// Page renders GET /appointments grouped into current, upcoming and past.
func (h *HistoryHandler) Page(c *gin.Context) {
	session := middleware.CurrentSession(c)
	now := h.now()

	appts, err := h.api.Appointments(c.Request.Context(), session.Token)
	if isUnauthorized(err) {
		expireSession(c)
		return
	}

	var loadErr string
	if err != nil {
		getLogger(c).Warn("Failed to load appointment history", zap.Error(err))
		loadErr = booking.Message("load your appointments", err)
	}
	history := booking.Group(appts, now)

	if utils.WantsJSON(c) {
		status := http.StatusOK
		if err != nil {
			status = statusFor(err)
		}
		c.JSON(status, gin.H{
			"current":  history.Current,
			"upcoming": history.Upcoming,
			"past":     history.Past,
			"error":    loadErr,
		})
		return
	}
	render(c, http.StatusOK, "history.html", gin.H{
		"Title":    "My Appointments",
		"Current":  views(history.Current, now),
		"Upcoming": views(history.Upcoming, now),
		"Past":     views(history.Past, now),
		"Empty":    history.Empty() && err == nil,
		"Error":    loadErr,
	})
}

// Cancel handles POST /appointments/:id/cancel, then shows the re-fetched list.
func (h *HistoryHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	session := middleware.CurrentSession(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		session.Flash = "That appointment could not be found."
		h.done(c, http.StatusBadRequest)
		return
	}

	if err := h.api.CancelAppointment(ctx, session.Token, id); err != nil {
		if isUnauthorized(err) {
			expireSession(c)
			return
		}
		session.Flash = booking.Message("cancel the appointment", err)
		h.done(c, statusFor(err))
		return
	}

	getLogger(c).Info("Appointment canceled from history", zap.Int64("appointmentID", id))
	withdrawReminder(c, h.reminders, id)
	h.forgetFlow(ctx, session.ID, id)
	session.Flash = "Your appointment has been canceled."
	h.done(c, http.StatusOK)
}

// forgetFlow resets a booking flow still showing the canceled appointment.
func (h *HistoryHandler) forgetFlow(ctx context.Context, sessionID string, id int64) {
	if h.flows == nil {
		return
	}
	state, err := h.flows.Load(ctx, sessionID)
	if err != nil || state.Appointment == nil || state.Appointment.ID != id {
		return
	}
	_ = h.flows.Clear(ctx, sessionID)
}

func (h *HistoryHandler) done(c *gin.Context, status int) {
	if utils.WantsJSON(c) {
		session := middleware.CurrentSession(c)
		c.JSON(status, gin.H{"message": session.PopFlash()})
		return
	}
	redirect(c, "/appointments")
}

func views(appts []models.Appointment, now time.Time) []historyView {
	out := make([]historyView, 0, len(appts))
	for _, a := range appts {
		out = append(out, historyView{Appointment: a, Actionable: booking.Actionable(a, now)})
	}
	return out
}
