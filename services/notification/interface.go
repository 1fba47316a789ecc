package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mindbloom/models"

	"github.com/go-redis/redis/v8"
)

const (
	inboxPrefix = "notices:"

	// InboxCapacity is the number of notices kept per user.
	InboxCapacity = 20
	inboxTTL      = 30 * 24 * time.Hour
)

// NotificationService delivers in-app notices shown on the home page.
type NotificationService interface {
	Push(ctx context.Context, userKey string, notice models.Notice) error
	List(ctx context.Context, userKey string, limit int64) ([]models.Notice, error)
}

// RedisInbox keeps a capped, newest-first list of notices per user.
type RedisInbox struct {
	client *redis.Client
}

func NewRedisInbox(client *redis.Client) *RedisInbox {
	return &RedisInbox{client: client}
}

func (s *RedisInbox) Push(ctx context.Context, userKey string, notice models.Notice) error {
	if userKey == "" {
		return fmt.Errorf("notice has no recipient")
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = time.Now()
	}
	b, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	key := inboxPrefix + userKey
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, InboxCapacity-1)
	pipe.Expire(ctx, key, inboxTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push notice: %w", err)
	}
	return nil
}

func (s *RedisInbox) List(ctx context.Context, userKey string, limit int64) ([]models.Notice, error) {
	if userKey == "" {
		return nil, nil
	}
	if limit <= 0 || limit > InboxCapacity {
		limit = InboxCapacity
	}
	raw, err := s.client.LRange(ctx, inboxPrefix+userKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	notices := make([]models.Notice, 0, len(raw))
	for _, item := range raw {
		var n models.Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}
