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
	veniceBaseURL      = "https://api.venice.ai/api/v1"
	DefaultVeniceImage = "venice-sd35"
	veniceImageSide    = 1024
)

// VeniceService implements LLMService and ImageGenerator for Venice AI
type VeniceService struct {
	apiKey     string
	modelName  string
	imageModel string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ LLMService     = (*VeniceService)(nil)
	_ ImageGenerator = (*VeniceService)(nil)
)

type VeniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

// VeniceChatRequest represents the request structure for Venice AI chat completions
type VeniceChatRequest struct {
	Model            string             `json:"model"`
	Messages         []chat.ChatMessage `json:"messages"`
	Temperature      float64            `json:"temperature,omitempty"`
	MaxTokens        int                `json:"max_tokens,omitempty"`
	Stream           bool               `json:"stream"`
	VeniceParameters VeniceParameters   `json:"venice_parameters"`
}

// VeniceChatChoice represents a single choice in the Venice AI response
type VeniceChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// VeniceChatResponse represents the response structure for Venice AI chat completions
type VeniceChatResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []VeniceChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

type VeniceImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

type VeniceImageResponse struct {
	ID     string   `json:"id"`
	Images []string `json:"images"` // base64
}

// NewVeniceService creates a new Venice AI service
func NewVeniceService(apiKey, modelName, imageModel string, logger *slog.Logger) *VeniceService {
	if imageModel == "" {
		imageModel = DefaultVeniceImage
	}
	return &VeniceService{
		apiKey:     apiKey,
		modelName:  modelName,
		imageModel: imageModel,
		baseURL:    veniceBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// InitModel initializes the model (Venice AI doesn't require explicit model initialization)
func (v *VeniceService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

func (v *VeniceService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	return true, nil
}

func (v *VeniceService) Generate(ctx context.Context, prompt string, params chat.GenerationParams) (string, error) {
	messages, err := promptMessages(prompt)
	if err != nil {
		return "", err
	}
	return v.chatCompletion(ctx, messages, params)
}

// Chat generates a chat response using Venice AI
func (v *VeniceService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error) {
	content, err := v.chatCompletion(ctx, messages, params)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content}, nil
}

func (v *VeniceService) chatCompletion(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (string, error) {
	params = params.WithDefaults()
	var veniceResp VeniceChatResponse
	err := v.post(ctx, "/chat/completions", VeniceChatRequest{
		Model:       v.modelName,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		VeniceParameters: VeniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}, &veniceResp)
	if err != nil {
		return "", err
	}
	if veniceResp.Error != nil {
		return "", fmt.Errorf("API error: %s", veniceResp.Error.Message)
	}
	if len(veniceResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	if strings.TrimSpace(veniceResp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return veniceResp.Choices[0].Message.Content, nil
}

// GenerateImage renders prompt with Venice's image endpoint.
func (v *VeniceService) GenerateImage(ctx context.Context, prompt string) (*chat.Image, error) {
	var imgResp VeniceImageResponse
	err := v.post(ctx, "/image/generate", VeniceImageRequest{
		Model:  v.imageModel,
		Prompt: prompt,
		Width:  veniceImageSide,
		Height: veniceImageSide,
		Format: "png",
	}, &imgResp)
	if err != nil {
		return nil, err
	}
	if len(imgResp.Images) == 0 {
		return nil, fmt.Errorf("no images returned from API")
	}
	return decodeImage(imgResp.Images[0])
}

func (v *VeniceService) post(ctx context.Context, path string, payload, out any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		v.logger.Error("Venice API returned error", "path", path, "status_code", resp.StatusCode)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
