package handlers

import (
	"errors"
	"net/http"

	"mindbloom/models"
	"mindbloom/services/feedback"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	svc *feedback.Service
}

func NewFeedbackHandler(svc *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func (h *FeedbackHandler) Page(c *gin.Context) {
	render(c, http.StatusOK, "feedback.html", feedbackForm(models.Feedback{Type: models.FeedbackTypes[0]}, "", nil))
}

// Submit handles POST /feedback.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var in models.Feedback
	fieldErrs, err := bind(c, &in)
	switch {
	case err != nil:
		getLogger(c).Info("Unreadable feedback request", zap.Error(err))
		h.failed(c, in, http.StatusBadRequest, badInputMessage, nil)
		return
	case len(fieldErrs) > 0:
		h.failed(c, in, http.StatusBadRequest, "Please correct the highlighted fields.", feedback.FieldErrors(fieldErrs).Fields)
		return
	}

	saved, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		var ve *feedback.ValidationError
		if errors.As(err, &ve) {
			h.failed(c, in, http.StatusBadRequest, "Please correct the highlighted fields.", ve.Fields)
			return
		}
		getLogger(c).Error("Failed to store feedback", zap.Error(err))
		h.failed(c, in, http.StatusInternalServerError, "We could not save your feedback. Please try again.", nil)
		return
	}

	if utils.WantsJSON(c) {
		c.JSON(http.StatusCreated, saved)
		return
	}
	render(c, http.StatusOK, "feedback.html", gin.H{
		"Title":     "Thank you",
		"Submitted": true,
		"Form":      saved,
	})
}

func (h *FeedbackHandler) failed(c *gin.Context, in models.Feedback, status int, msg string, fields map[string]string) {
	if utils.WantsJSON(c) {
		c.JSON(status, gin.H{"message": msg, "fields": fields})
		return
	}
	render(c, status, "feedback.html", feedbackForm(in, msg, fields))
}

func feedbackForm(form models.Feedback, msg string, fields map[string]string) gin.H {
	return gin.H{
		"Title":  "Share your feedback",
		"Types":  models.FeedbackTypes,
		"Labels": models.FeedbackTypeLabels,
		"Form":   form,
		"Error":  msg,
		"Fields": fields,
	}
}
