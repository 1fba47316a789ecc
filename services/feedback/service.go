// Package feedback validates and stores feedback form submissions.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	feedbackRepo "mindbloom/database/repository/feedback"
	"mindbloom/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate reads the same binding tags gin checks on the form, so the rules
// hold for callers that do not come through a request.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// ValidationError lists the offending form fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"name", "email", "type", "message"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

type Service struct {
	repo feedbackRepo.FeedbackRepository
	now  func() time.Time
}

func NewService(repo feedbackRepo.FeedbackRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Submit validates fb, assigns its id and timestamp and stores it.
func (s *Service) Submit(ctx context.Context, fb models.Feedback) (*models.Feedback, error) {
	fb.Name = strings.TrimSpace(fb.Name)
	fb.Email = strings.TrimSpace(fb.Email)
	fb.Type = strings.ToLower(strings.TrimSpace(fb.Type))
	fb.Message = strings.TrimSpace(fb.Message)
	if fb.Type == "" {
		fb.Type = models.FeedbackTypes[0]
	}

	if err := check(fb); err != nil {
		return nil, err
	}

	fb.ID = uuid.New().String()
	fb.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, &fb); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	return &fb, nil
}

// Recent returns the latest submissions, newest first.
func (s *Service) Recent(ctx context.Context, limit int64) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Recent(ctx, limit)
}

// FieldErrors turns validator failures into the per-field messages shown
// next to the form inputs.
func FieldErrors(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		name := strings.ToLower(fe.Field())
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = fieldMessage(name, fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch {
	case fe.Tag() == "required" && name == "type":
		return "Please choose a feedback type"
	case fe.Tag() == "required" && name == "message":
		return "Please enter your feedback"
	case fe.Tag() == "required":
		return "Please enter your " + name
	case fe.Tag() == "email":
		return "Please enter a valid email address"
	case fe.Tag() == "oneof":
		return "Please choose a feedback type"
	case fe.Tag() == "max" && name == "message":
		return fmt.Sprintf("Feedback must be at most %s characters", fe.Param())
	case fe.Tag() == "max":
		return fmt.Sprintf("Your %s must be at most %s characters", name, fe.Param())
	default:
		return "Please check your " + name
	}
}

func check(fb models.Feedback) error {
	err := validate.Struct(fb)
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return FieldErrors(errs)
	}
	return err
}
