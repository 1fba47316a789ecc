package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/booking"
	"mindbloom/services/tasks"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CounsellorAPI is the backend surface used by the counsellor dashboard.
type CounsellorAPI interface {
	TodaysAppointments(ctx context.Context, token string) ([]models.Appointment, error)
	SetAppointmentStatus(ctx context.Context, token string, id int64, operation string) error
}

// AdminCredentials are the dashboard login and the token forwarded to the
// backend on its behalf.
type AdminCredentials struct {
	Email        string
	PasswordHash string
	APIToken     string
}

type AdminHandler struct {
	api       CounsellorAPI
	creds     AdminCredentials
	reminders tasks.Scheduler
}

func NewAdminHandler(api CounsellorAPI, creds AdminCredentials, reminders tasks.Scheduler) *AdminHandler {
	if reminders == nil {
		reminders = tasks.NopScheduler{}
	}
	return &AdminHandler{api: api, creds: creds, reminders: reminders}
}

func (h *AdminHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentSession(c).Admin {
		redirect(c, "/counsellor")
		return
	}
	render(c, http.StatusOK, "admin_login.html", gin.H{"Title": "Counsellor login"})
}

// Login checks the configured admin email and bcrypt hash.
func (h *AdminHandler) Login(c *gin.Context) {
	var in loginInput
	fieldErrs, err := bind(c, &in)
	if err != nil {
		getLogger(c).Info("Unreadable admin login request", zap.Error(err))
		h.loginFailed(c, in, http.StatusBadRequest, badInputMessage)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if len(fieldErrs) > 0 {
		h.loginFailed(c, in, http.StatusBadRequest, "Please enter your email and password.")
		return
	}

	if !h.verify(in.Email, in.Password) {
		getLogger(c).Warn("Admin login rejected", zap.String("email", in.Email))
		h.loginFailed(c, in, http.StatusUnauthorized, "Invalid admin credentials.")
		return
	}

	middleware.RotateSession(c)
	session := middleware.CurrentSession(c)
	session.Admin = true
	getLogger(c).Info("Admin logged in", zap.String("email", in.Email))
	if utils.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"redirect": "/counsellor"})
		return
	}
	redirect(c, "/counsellor")
}

func (h *AdminHandler) loginFailed(c *gin.Context, in loginInput, status int, msg string) {
	if utils.WantsJSON(c) {
		c.JSON(status, utils.ErrorResponse{Message: msg})
		return
	}
	render(c, status, "admin_login.html", gin.H{"Title": "Counsellor login", "Error": msg, "Email": in.Email})
}

func (h *AdminHandler) verify(email, password string) bool {
	if h.creds.Email == "" || h.creds.PasswordHash == "" || password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(strings.ToLower(h.creds.Email))) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(h.creds.PasswordHash), []byte(password)) == nil
	return emailOK && passOK
}

func (h *AdminHandler) Logout(c *gin.Context) {
	middleware.CurrentSession(c).Admin = false
	redirect(c, "/admin/login")
}

// Dashboard lists today's appointments.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	appts, err := h.api.TodaysAppointments(c.Request.Context(), h.token(c))
	var loadErr string
	if err != nil {
		getLogger(c).Warn("Failed to load today's appointments", zap.Error(err))
		loadErr = booking.Message("load today's appointments", err)
	}

	if utils.WantsJSON(c) {
		status := http.StatusOK
		if err != nil {
			status = statusFor(err)
		}
		c.JSON(status, gin.H{"appointments": appts, "error": loadErr})
		return
	}
	render(c, http.StatusOK, "counsellor.html", gin.H{
		"Title":        "Counsellor Dashboard",
		"Appointments": appts,
		"Today":        time.Now().Format("Monday, January 2, 2006"),
		"Error":        loadErr,
	})
}

// Complete handles POST /counsellor/appointments/:id/complete.
func (h *AdminHandler) Complete(c *gin.Context) {
	h.setStatus(c, models.OperationComplete, models.StatusCompleted, "Appointment marked as completed.")
}

// Cancel handles POST /counsellor/appointments/:id/cancel.
func (h *AdminHandler) Cancel(c *gin.Context) {
	h.setStatus(c, models.OperationCancel, models.StatusCanceled, "Appointment canceled.")
}

func (h *AdminHandler) setStatus(c *gin.Context, operation, status, done string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.finish(c, http.StatusBadRequest, "That appointment could not be found.", 0, "")
		return
	}

	if err := h.api.SetAppointmentStatus(c.Request.Context(), h.token(c), id, operation); err != nil {
		getLogger(c).Warn("Failed to update appointment status",
			zap.Int64("appointmentID", id),
			zap.String("operation", operation),
			zap.Error(err),
		)
		h.finish(c, statusFor(err), booking.Message("update the appointment", err), id, "")
		return
	}
	getLogger(c).Info("Appointment status updated", zap.Int64("appointmentID", id), zap.String("status", status))
	withdrawReminder(c, h.reminders, id)
	h.finish(c, http.StatusOK, done, id, status)
}

func (h *AdminHandler) finish(c *gin.Context, code int, msg string, id int64, status string) {
	if utils.WantsJSON(c) {
		c.JSON(code, gin.H{"message": msg, "id": id, "status": status})
		return
	}
	middleware.CurrentSession(c).Flash = msg
	redirect(c, "/counsellor")
}

// token prefers the configured service token; an admin who also holds a user
// login falls back to that.
func (h *AdminHandler) token(c *gin.Context) string {
	if h.creds.APIToken != "" {
		return h.creds.APIToken
	}
	return middleware.CurrentSession(c).Token
}
