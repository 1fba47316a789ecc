// Package intelligence answers chatbot messages and transcribes voice input.
package intelligence

import (
	"context"

	"mindbloom/models"
)

// Responder produces the assistant's reply to the newest user message.
// history holds the earlier turns, oldest first.
type Responder interface {
	Reply(ctx context.Context, history []models.ChatMessage, text string) (string, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (*models.Transcription, error)
}

// Greeting opens every conversation.
const Greeting = "Hello, I'm MindBloom's virtual assistant. How are you feeling today?"

// QuickPrompts are offered as one-click messages on the chat page.
var QuickPrompts = []string{
	"I'm feeling anxious",
	"I'm having trouble sleeping",
	"I need help with stress",
	"I'm feeling sad today",
}
