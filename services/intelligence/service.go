package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mindbloom/models"

	"go.uber.org/zap"
)

// ErrEmptyMessage is returned for blank chat input.
var ErrEmptyMessage = errors.New("message is empty")

// maxMessageLength bounds a single chat message.
const maxMessageLength = 2000

// ChatService runs one chat turn: load history, reply, store both messages.
type ChatService struct {
	store     *ConversationStore
	responder Responder
	logger    *zap.Logger
}

func NewChatService(store *ConversationStore, responder Responder, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{store: store, responder: responder, logger: logger}
}

// Send answers text and returns the reply with the updated conversation.
func (s *ChatService) Send(ctx context.Context, sessionID, text string) (*models.ChatResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > maxMessageLength {
		text = text[:maxMessageLength]
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := s.responder.Reply(ctx, history, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	userMsg := models.ChatMessage{Role: models.RoleUser, Content: text, Timestamp: time.Now()}
	botMsg := models.ChatMessage{Role: models.RoleBot, Content: reply, Timestamp: time.Now()}
	if err := s.store.Append(ctx, sessionID, userMsg, botMsg); err != nil {
		return nil, err
	}

	messages := append(history, userMsg, botMsg)
	if len(messages) > MaxHistory {
		messages = messages[len(messages)-MaxHistory:]
	}
	s.logger.Debug("Chat turn answered", zap.String("sessionID", sessionID), zap.Int("messages", len(messages)))
	return &models.ChatResponse{Reply: botMsg, Messages: messages}, nil
}

// History returns the stored conversation.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return s.store.History(ctx, sessionID)
}

// Reset clears the conversation.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}
