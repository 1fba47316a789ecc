package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalResponder(t *testing.T) {
	r := NewLocalResponder()
	cases := map[string]string{
		"I'm feeling ANXIOUS":         "Anxiety can be challenging",
		"my anxiety is bad":           "Anxiety can be challenging",
		"I'm having trouble sleeping": "Sleep difficulties are common",
		"I need help with stress":     "Managing stress",
		"I feel depressed":            "I'm sorry you're feeling this way",
		"hello there":                 "Thank you for sharing",
	}
	for text, prefix := range cases {
		reply, err := r.Reply(context.Background(), nil, text)
		require.NoError(t, err)
		assert.Contains(t, reply, prefix, text)
	}
}
