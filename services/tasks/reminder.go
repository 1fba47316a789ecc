package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindbloom/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeSendReminder = "reminder:send"
	ReminderQueue    = "default"

	// ReminderLead is how long before the appointment the reminder fires.
	ReminderLead = 24 * time.Hour
)

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload.AppointmentID)),
		asynq.Queue(ReminderQueue),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ReminderTaskID names the single reminder an appointment can have queued.
func ReminderTaskID(appointmentID int64) string {
	return fmt.Sprintf("reminder:%d", appointmentID)
}

// ReminderFireTime is ReminderLead before the appointment start, or now when
// that moment has passed. Appointments without a start time are taken to
// begin at midnight.
func ReminderFireTime(appt models.Appointment, now time.Time) (time.Time, error) {
	start := "00:00"
	if appt.Slot != nil && appt.Slot.StartTime != "" {
		start = appt.Slot.StartTime
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", appt.Day()+" "+start, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment date %q: %w", appt.Date, err)
	}
	fire := at.Add(-ReminderLead)
	if fire.Before(now) {
		return now, nil
	}
	return fire, nil
}

// Scheduler enqueues appointment reminders and withdraws them again.
type Scheduler interface {
	ScheduleReminder(ctx context.Context, userKey string, appt models.Appointment) error
	CancelReminder(ctx context.Context, appointmentID int64) error
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskDeleter interface {
	DeleteTask(queue, id string) error
	Close() error
}

// AsynqScheduler enqueues reminders on the asynq queue. An appointment has at
// most one queued reminder; scheduling it again replaces the old one.
type AsynqScheduler struct {
	client    enqueuer
	inspector taskDeleter
	logger    *zap.Logger
	now       func() time.Time
}

func NewAsynqScheduler(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *AsynqScheduler {
	return newScheduler(asynq.NewClient(redisOpt), asynq.NewInspector(redisOpt), logger)
}

func newScheduler(client enqueuer, inspector taskDeleter, logger *zap.Logger) *AsynqScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsynqScheduler{client: client, inspector: inspector, logger: logger, now: time.Now}
}

func (s *AsynqScheduler) ScheduleReminder(ctx context.Context, userKey string, appt models.Appointment) error {
	if err := s.CancelReminder(ctx, appt.ID); err != nil {
		return err
	}

	now := s.now()
	if appt.Day() < now.Format("2006-01-02") {
		return nil
	}
	fireAt, err := ReminderFireTime(appt, now)
	if err != nil {
		return err
	}

	payload := models.ReminderPayload{
		UserKey:       userKey,
		AppointmentID: appt.ID,
		Date:          appt.Day(),
		Time:          appt.TimeLabel(),
		FireDate:      fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	s.logger.Info("Reminder scheduled",
		zap.String("taskID", info.ID),
		zap.Int64("appointmentID", appt.ID),
		zap.Time("fireAt", fireAt),
	)
	return nil
}

// CancelReminder removes the queued reminder of an appointment. Having none
// is not an error.
func (s *AsynqScheduler) CancelReminder(_ context.Context, appointmentID int64) error {
	err := s.inspector.DeleteTask(ReminderQueue, ReminderTaskID(appointmentID))
	switch {
	case err == nil:
		s.logger.Info("Reminder withdrawn", zap.Int64("appointmentID", appointmentID))
		return nil
	case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
		return nil
	default:
		return fmt.Errorf("failed to withdraw reminder: %w", err)
	}
}

func (s *AsynqScheduler) Close() error {
	if err := s.inspector.Close(); err != nil {
		s.logger.Warn("Failed to close reminder inspector", zap.Error(err))
	}
	return s.client.Close()
}

// NopScheduler is used when reminders are disabled.
type NopScheduler struct{}

func (NopScheduler) ScheduleReminder(context.Context, string, models.Appointment) error {
	return nil
}

func (NopScheduler) CancelReminder(context.Context, int64) error {
	return nil
}
