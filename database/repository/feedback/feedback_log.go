package feedbackRepo

import (
	"context"
	"sync"

	"mindbloom/models"

	"go.uber.org/zap"
)

const logRepoCapacity = 100

// LogFeedbackRepo is used when MongoDB is disabled. Submissions are logged
// and the most recent ones kept in memory.
type LogFeedbackRepo struct {
	mu     sync.Mutex
	items  []models.Feedback
	logger *zap.Logger
}

func NewLogFeedbackRepo(logger *zap.Logger) *LogFeedbackRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogFeedbackRepo{logger: logger}
}

func (r *LogFeedbackRepo) Create(_ context.Context, fb *models.Feedback) error {
	r.logger.Info("Feedback received",
		zap.String("id", fb.ID),
		zap.String("type", fb.Type),
		zap.String("email", fb.Email),
		zap.Int("length", len(fb.Message)),
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *fb)
	if len(r.items) > logRepoCapacity {
		r.items = r.items[len(r.items)-logRepoCapacity:]
	}
	return nil
}

func (r *LogFeedbackRepo) Recent(_ context.Context, limit int64) ([]models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Feedback, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}
