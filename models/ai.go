package models

import "time"

// Chat roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ChatMessage is one entry of a chatbot conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the payload of POST /chatbot/message.
type ChatRequest struct {
	Text string `json:"text" form:"text" binding:"required"`
}

// ChatResponse is returned to the chat page.
type ChatResponse struct {
	Reply    ChatMessage   `json:"reply"`
	Messages []ChatMessage `json:"messages"`
}

// Transcription is the result of a speech-to-text request.
type Transcription struct {
	Text     string `json:"transcription"`
	Language string `json:"language"`
}
