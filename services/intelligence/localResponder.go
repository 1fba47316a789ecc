package intelligence

import (
	"context"
	"strings"

	"mindbloom/models"
)

type keywordReply struct {
	keywords []string
	reply    string
}

var keywordReplies = []keywordReply{
	{
		keywords: []string{"anxious", "anxiety"},
		reply:    "Anxiety can be challenging. Some things that might help include deep breathing, physical activity, or limiting caffeine. Would you like me to suggest a specific breathing exercise?",
	},
	{
		keywords: []string{"sleep"},
		reply:    "Sleep difficulties are common. Have you tried establishing a regular sleep schedule? Also, reducing screen time before bed and creating a relaxing bedtime routine can be helpful.",
	},
	{
		keywords: []string{"stress"},
		reply:    "Managing stress is important for mental health. Consider practicing mindfulness, taking short breaks during the day, or engaging in activities you enjoy. Would you like to hear about a simple mindfulness exercise?",
	},
	{
		keywords: []string{"sad", "depression", "depressed"},
		reply:    "I'm sorry you're feeling this way. Remember that it's okay to have these feelings. Reaching out to others, gentle physical activity, and self-compassion can help. Would you like me to connect you with one of our therapists?",
	},
}

const fallbackReply = "Thank you for sharing that with me. Would you like to explore some resources related to what you're experiencing, or would you prefer to book a session with one of our therapists?"

// LocalResponder answers from a fixed keyword table. It needs no network and
// serves as the fallback when Gemini is unavailable.
type LocalResponder struct{}

func NewLocalResponder() *LocalResponder {
	return &LocalResponder{}
}

func (r *LocalResponder) Reply(_ context.Context, _ []models.ChatMessage, text string) (string, error) {
	lower := strings.ToLower(text)
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				return kr.reply, nil
			}
		}
	}
	return fallbackReply, nil
}
