package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mindbloom/models"

	"github.com/go-redis/redis/v8"
)

const (
	chatPrefix = "chat:history:"

	// MaxHistory caps the stored conversation.
	MaxHistory = 50
)

// ConversationStore keeps each web session's conversation in a Redis list.
type ConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewConversationStore(client *redis.Client, ttl time.Duration) *ConversationStore {
	return &ConversationStore{client: client, ttl: ttl}
}

// History returns the conversation, oldest first. An unknown session starts
// with the greeting.
func (s *ConversationStore) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	raw, err := s.client.LRange(ctx, chatPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	if len(raw) == 0 {
		return []models.ChatMessage{greeting()}, nil
	}

	messages := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var m models.ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Append adds messages, trimming the oldest beyond MaxHistory. The greeting
// is written first when the conversation is new.
func (s *ConversationStore) Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error {
	key := chatPrefix + sessionID

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check chat history: %w", err)
	}
	if exists == 0 {
		messages = append([]models.ChatMessage{greeting()}, messages...)
	}

	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal chat message: %w", err)
		}
		values = append(values, b)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -MaxHistory, -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	return nil
}

// Clear resets the conversation.
func (s *ConversationStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, chatPrefix+sessionID).Err()
}

func greeting() models.ChatMessage {
	return models.ChatMessage{Role: models.RoleBot, Content: Greeting, Timestamp: time.Now()}
}
