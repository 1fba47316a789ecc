package feedbackRepo

import (
	"context"

	"mindbloom/models"
)

// FeedbackRepository stores messages left through the feedback form.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	Recent(ctx context.Context, limit int64) ([]models.Feedback, error)
}
