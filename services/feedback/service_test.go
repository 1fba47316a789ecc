package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	feedbackRepo "mindbloom/database/repository/feedback"
	"mindbloom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Create(context.Context, *models.Feedback) error { return errors.New("db down") }
func (failingRepo) Recent(context.Context, int64) ([]models.Feedback, error) {
	return nil, nil
}

func newTestService() *Service {
	svc := NewService(feedbackRepo.NewLogFeedbackRepo(nil))
	svc.now = func() time.Time { return time.Date(2025, 4, 15, 9, 0, 0, 0, time.FixedZone("EAT", 3*3600)) }
	return svc
}

func TestSubmit(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	fb, err := svc.Submit(ctx, models.Feedback{
		Name:    "  Jane  ",
		Email:   "jane@example.com",
		Type:    " Suggestion ",
		Message: "More evening slots please",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, "Jane", fb.Name)
	assert.Equal(t, "suggestion", fb.Type)
	assert.Equal(t, time.UTC, fb.CreatedAt.Location())
	assert.Equal(t, 6, fb.CreatedAt.Hour())

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fb.ID, recent[0].ID)
}

func TestSubmitDefaultsType(t *testing.T) {
	fb, err := newTestService().Submit(context.Background(), models.Feedback{
		Name: "Jane", Email: "jane@example.com", Message: "Thanks",
	})
	require.NoError(t, err)
	assert.Equal(t, "general", fb.Type)
}

func TestSubmitValidation(t *testing.T) {
	_, err := newTestService().Submit(context.Background(), models.Feedback{
		Email:   "not-an-email",
		Type:    "complaint",
		Message: strings.Repeat("x", 5001),
	})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Fields, 4)
	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "type")
	assert.Contains(t, vErr.Fields, "message")
	assert.True(t, strings.HasPrefix(vErr.Error(), "Please enter your name"))
	assert.Equal(t, "Please enter a valid email address", vErr.Fields["email"])
	assert.Equal(t, "Feedback must be at most 5000 characters", vErr.Fields["message"])
}

func TestSubmitAcceptsEveryFormType(t *testing.T) {
	svc := newTestService()
	for _, typ := range models.FeedbackTypes {
		fb, err := svc.Submit(context.Background(), models.Feedback{
			Name: "Jane", Email: "jane@example.com", Type: typ, Message: "Thanks",
		})
		require.NoError(t, err, typ)
		assert.Equal(t, typ, fb.Type)
		assert.NotEmpty(t, models.FeedbackTypeLabels[typ])
	}
}

func TestSubmitRejectsBlankAfterTrim(t *testing.T) {
	_, err := newTestService().Submit(context.Background(), models.Feedback{
		Name: "   ", Email: "jane@example.com", Message: "Thanks",
	})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, map[string]string{"name": "Please enter your name"}, vErr.Fields)
}

func TestSubmitRepoFailure(t *testing.T) {
	svc := NewService(failingRepo{})
	_, err := svc.Submit(context.Background(), models.Feedback{
		Name: "Jane", Email: "jane@example.com", Message: "Thanks",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestLogRepoKeepsNewestFirst(t *testing.T) {
	repo := feedbackRepo.NewLogFeedbackRepo(nil)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &models.Feedback{ID: id}))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
}
