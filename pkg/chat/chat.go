package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRoleUser   = "user"      // player
	ChatRoleAgent  = "assistant" // narrator
	ChatRoleSystem = "system"    // persona instructions
)

// Sampling defaults used when a request leaves a parameter unset.
const (
	DefaultTemperature = 0.9
	DefaultMaxTokens   = 1024
	ChatMaxTokens      = 300
)

// ChatMessage represents a single message in a conversation sent to the LLM.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// GenerationParams are the sampling parameters passed to a generation backend.
type GenerationParams struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// WithDefaults fills zero fields with the package defaults.
func (p GenerationParams) WithDefaults() GenerationParams {
	if p.Temperature <= 0 {
		p.Temperature = DefaultTemperature
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return p
}

// ChatRequest is a single plaidchat turn from the user.
type ChatRequest struct {
	Message string `json:"message"`
}

func (cr *ChatRequest) Validate() error {
	if strings.TrimSpace(cr.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// ChatResponse is the narrator's reply to a chat turn.
type ChatResponse struct {
	Message     string        `json:"message,omitempty"`
	ChatHistory []ChatMessage `json:"chat_history,omitempty"`
}

// Image is a decoded generated image.
type Image struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"` // "image/png", "image/jpeg"
}
