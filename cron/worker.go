package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mindbloom/models"
	"mindbloom/services/notification"
	"mindbloom/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker starts the asynq worker in the background. Signals are
// left to the caller, which shuts the returned server down.
func InitReminderWorker(redisOpt asynq.RedisClientOpt, notifier notification.NotificationService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				tasks.ReminderQueue: 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(notifier, logger))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Error("Reminder worker gave up; reminders will not be delivered")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleReminderTask turns a reminder task into an in-app notice.
func HandleReminderTask(notifier notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		notice := models.Notice{
			Title:     "Upcoming appointment",
			Body:      fmt.Sprintf("Reminder: you have an appointment on %s at %s.", p.Date, p.Time),
			CreatedAt: time.Now(),
		}
		if err := notifier.Push(ctx, p.UserKey, notice); err != nil {
			logger.Error("Failed to deliver reminder", zap.Int64("appointmentID", p.AppointmentID), zap.Error(err))
			return err
		}
		logger.Info("Reminder delivered", zap.Int64("appointmentID", p.AppointmentID), zap.String("date", p.Date))
		return nil
	}
}
