package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// AnthropicService implements LLMService for Anthropic Claude
type AnthropicService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ LLMService = (*AnthropicService)(nil)

type AnthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []chat.ChatMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicService(apiKey string, modelName string, logger *slog.Logger) *AnthropicService {
	return &AnthropicService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   anthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (a *AnthropicService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// IsModelReady is always true; Anthropic models need no warm-up.
func (a *AnthropicService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	return true, nil
}

func (a *AnthropicService) Generate(ctx context.Context, prompt string, params chat.GenerationParams) (string, error) {
	messages, err := promptMessages(prompt)
	if err != nil {
		return "", err
	}
	return a.chatCompletion(ctx, messages, params)
}

func (a *AnthropicService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error) {
	content, err := a.chatCompletion(ctx, messages, params)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content}, nil
}

func (a *AnthropicService) chatCompletion(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (string, error) {
	params = params.WithDefaults()
	systemPrompt, conversation := splitChatMessages(messages)

	anthropicReq := AnthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   params.MaxTokens,
		Temperature: &params.Temperature,
		Messages:    conversation,
		System:      systemPrompt,
	}

	reqBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Anthropic API returned error", "status_code", resp.StatusCode)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp AnthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if anthropicResp.Error != nil {
		return "", fmt.Errorf("API error: %s", anthropicResp.Error.Message)
	}

	var text string
	for _, block := range anthropicResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	a.logger.Debug("Anthropic completion", "model", a.modelName,
		"input_tokens", anthropicResp.Usage.InputTokens, "output_tokens", anthropicResp.Usage.OutputTokens)
	return text, nil
}
