package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mindbloom/models"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const systemInstruction = `You are MindBloom's virtual assistant, a warm and supportive companion on a mental health services website.
Listen, acknowledge feelings, and offer simple evidence-based coping ideas such as breathing exercises, sleep hygiene or mindfulness.
Keep answers short. You are not a therapist: suggest booking a session with one of MindBloom's therapists when it would help.
If someone mentions self-harm or being in danger, urge them to contact local emergency services or a crisis line immediately.`

var errEmptyReply = errors.New("gemini returned no text")

// GeminiResponder answers with a Gemini model, replaying the stored
// conversation as chat history. Failures fall through to fallback.
type GeminiResponder struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	fallback Responder
	logger   *zap.Logger
}

func NewGeminiResponder(ctx context.Context, apiKey, modelName string, fallback Responder, logger *zap.Logger) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(512)

	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiResponder{client: client, model: model, fallback: fallback, logger: logger}, nil
}

func (g *GeminiResponder) Reply(ctx context.Context, history []models.ChatMessage, text string) (string, error) {
	reply, err := g.generate(ctx, history, text)
	if err == nil {
		return reply, nil
	}
	g.logger.Warn("Gemini reply failed", zap.Error(err))
	if g.fallback == nil {
		return "", err
	}
	return g.fallback.Reply(ctx, history, text)
}

func (g *GeminiResponder) generate(ctx context.Context, history []models.ChatMessage, text string) (string, error) {
	cs := g.model.StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyReply
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", errEmptyReply
	}
	return reply, nil
}

// Close releases the underlying client.
func (g *GeminiResponder) Close() error {
	return g.client.Close()
}

// toContents maps stored messages onto Gemini roles. The greeting is skipped
// because a chat history must open with a user turn.
func toContents(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == models.RoleBot {
			role = "model"
		}
		if len(contents) == 0 && role == "model" {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return contents
}
