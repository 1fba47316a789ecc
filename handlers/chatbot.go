package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/intelligence"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const allowedAudioExtension = ".wav"

// ChatHandler serves the chatbot page and its JSON endpoints. stt is nil
// when speech-to-text is not configured.
type ChatHandler struct {
	chat *intelligence.ChatService
	stt  intelligence.Transcriber
}

func NewChatHandler(chat *intelligence.ChatService, stt intelligence.Transcriber) *ChatHandler {
	return &ChatHandler{chat: chat, stt: stt}
}

func (h *ChatHandler) Page(c *gin.Context) {
	session := middleware.CurrentSession(c)
	messages, err := h.chat.History(c.Request.Context(), session.ID)
	if err != nil {
		getLogger(c).Error("Failed to load chat history", zap.Error(err))
		messages = []models.ChatMessage{{Role: models.RoleBot, Content: intelligence.Greeting}}
	}
	render(c, http.StatusOK, "chatbot.html", gin.H{
		"Title":        "Chat with MindBloom",
		"Messages":     messages,
		"QuickPrompts": intelligence.QuickPrompts,
		"VoiceEnabled": h.stt != nil,
	})
}

// Message handles POST /chatbot/message. Form posts come back to the page.
func (h *ChatHandler) Message(c *gin.Context) {
	var req models.ChatRequest
	fieldErrs, err := bind(c, &req)
	if err != nil {
		getLogger(c).Info("Unreadable chat request", zap.Error(err))
		if utils.WantsJSON(c) {
			utils.JSONError(c, http.StatusBadRequest, badInputMessage, "")
			return
		}
		redirect(c, "/chatbot")
		return
	}
	session := middleware.CurrentSession(c)

	var resp *models.ChatResponse
	if len(fieldErrs) > 0 {
		err = intelligence.ErrEmptyMessage
	} else {
		resp, err = h.chat.Send(c.Request.Context(), session.ID, req.Text)
	}
	if errors.Is(err, intelligence.ErrEmptyMessage) {
		if utils.WantsJSON(c) {
			utils.JSONError(c, http.StatusBadRequest, "Please type a message.", "")
			return
		}
		redirect(c, "/chatbot")
		return
	}
	if err != nil {
		getLogger(c).Error("Chat reply failed", zap.Error(err))
		if utils.WantsJSON(c) {
			utils.JSONError(c, http.StatusBadGateway, "The assistant is unavailable right now. Please try again.", err.Error())
			return
		}
		session.Flash = "The assistant is unavailable right now. Please try again."
		redirect(c, "/chatbot")
		return
	}

	if utils.WantsJSON(c) {
		c.JSON(http.StatusOK, resp)
		return
	}
	redirect(c, "/chatbot")
}

// Reset handles POST /chatbot/reset.
func (h *ChatHandler) Reset(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if err := h.chat.Reset(c.Request.Context(), session.ID); err != nil {
		getLogger(c).Error("Failed to reset chat", zap.Error(err))
	}
	if utils.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"messages": []models.ChatMessage{{Role: models.RoleBot, Content: intelligence.Greeting}}})
		return
	}
	redirect(c, "/chatbot")
}

// SpeechToText handles POST /chatbot/stt with a multipart "audio" .wav file.
func (h *ChatHandler) SpeechToText(c *gin.Context) {
	if h.stt == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Voice input is not available.", "speech-to-text is not configured")
		return
	}

	language := c.DefaultPostForm("language", intelligence.DefaultLanguage)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != allowedAudioExtension {
		utils.JSONError(c, http.StatusBadRequest, "invalid file type", fmt.Sprintf("expected %s, got %s", allowedAudioExtension, ext))
		return
	}
	if header.Size > intelligence.MaxAudioSize {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio file is too large", intelligence.ErrAudioTooLarge.Error())
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, intelligence.MaxAudioSize+1))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read audio file", err.Error())
		return
	}

	result, err := h.stt.Transcribe(c.Request.Context(), audio, language)
	switch {
	case errors.Is(err, intelligence.ErrAudioTooLarge):
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio file is too large", err.Error())
	case errors.Is(err, intelligence.ErrInvalidAudio), errors.Is(err, intelligence.ErrAudioTooLong):
		utils.JSONError(c, http.StatusBadRequest, "unsupported audio", err.Error())
	case err != nil:
		getLogger(c).Error("Speech recognition failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "speech recognition failed", err.Error())
	default:
		c.JSON(http.StatusOK, result)
	}
}
