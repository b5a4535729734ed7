package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

// ErrEmptyResponse is returned when a backend answers without any content.
var ErrEmptyResponse = errors.New("backend returned no content")

// LLMService defines the interface for interacting with a text generation backend
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// Generate turns an assembled story prompt into story text
	Generate(ctx context.Context, prompt string, params chat.GenerationParams) (string, error)

	// Chat continues a conversation whose first message may be a system prompt
	Chat(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error)

	// IsModelReady checks if the specified model is ready for use
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}

// ImageGenerator renders a visual prompt into an image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*chat.Image, error)
}

// promptMessages wraps a single prompt as a one-turn conversation.
func promptMessages(prompt string) ([]chat.ChatMessage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	return []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: prompt}}, nil
}

// splitChatMessages combines all system messages into a single system prompt
// and returns the remaining messages.
func splitChatMessages(messages []chat.ChatMessage) (string, []chat.ChatMessage) {
	var systemParts []string
	var rest []chat.ChatMessage
	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			rest = append(rest, msg)
		}
	}
	return strings.Join(systemParts, "\n\n"), rest
}
